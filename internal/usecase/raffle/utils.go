package raffle

import (
	"strconv"
	"time"

	"eventraffle/internal/errs"
)

const ceremonyTTL = time.Hour

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func cacheCeremonyKey(prizeID uint64) string {
	return "ceremony:prize:" + strconv.FormatUint(prizeID, 10)
}

func wrapContextErr(err error) error {
	return errs.Wrap(err, "check context")
}
