package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventraffle/internal/domain/raffle"
	"eventraffle/internal/errs"
	"eventraffle/internal/infrastructure/persistence/sqlite/model"
	"eventraffle/internal/ports"
)

type RaffleRepository struct {
	db *gorm.DB
}

var _ ports.RaffleRepository = (*RaffleRepository)(nil)

func NewRaffleRepository(db *gorm.DB) *RaffleRepository {
	return &RaffleRepository{db: db}
}

func (r *RaffleRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// guestRow is a guest joined with its attendance record.
type guestRow struct {
	model.Guest `gorm:"embedded"`
	AttendedAt  *string `gorm:"column:attended_at"`
}

func guestQuery(db *gorm.DB) *gorm.DB {
	return db.Table("guests").
		Select("guests.*, attendances.attended_at").
		Joins("LEFT JOIN attendances ON attendances.guest_id = guests.guest_id")
}

func (r *RaffleRepository) GetEvent(ctx context.Context, eventID uint64) (raffle.Event, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.Event{}, err
	}

	var row model.Event
	if err := db.Where("event_id = ?", eventID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return raffle.Event{}, raffle.ErrEventNotFound
		}
		return raffle.Event{}, errs.Wrap(err, "query event")
	}
	return mapEvent(row), nil
}

func (r *RaffleRepository) GetPrize(ctx context.Context, prizeID uint64) (raffle.Prize, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.Prize{}, err
	}

	var row model.Prize
	if err := db.Where("prize_id = ?", prizeID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return raffle.Prize{}, raffle.ErrPrizeNotFound
		}
		return raffle.Prize{}, errs.Wrap(err, "query prize")
	}
	return mapPrize(row), nil
}

func (r *RaffleRepository) ListPrizes(ctx context.Context, filter ports.PrizeFilter) ([]raffle.Prize, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Prize{})
	if filter.EventID != 0 {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.PrizeID != 0 {
		query = query.Where("prize_id = ?", filter.PrizeID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if !filter.IncludeSentinel {
		query = query.Where("is_sentinel = ?", false)
	}

	var rows []model.Prize
	if err := query.Order("prize_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query prizes")
	}

	items := make([]raffle.Prize, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPrize(row))
	}
	return items, nil
}

func (r *RaffleRepository) FindSentinelPrize(ctx context.Context, eventID uint64) (raffle.Prize, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.Prize{}, false, err
	}

	var rows []model.Prize
	if err := db.
		Where("event_id = ? AND is_sentinel = ?", eventID, true).
		Order("prize_id asc").
		Limit(1).
		Find(&rows).Error; err != nil {
		return raffle.Prize{}, false, errs.Wrap(err, "query sentinel prize")
	}
	if len(rows) == 0 {
		return raffle.Prize{}, false, nil
	}
	return mapPrize(rows[0]), true, nil
}

func (r *RaffleRepository) GetGuest(ctx context.Context, guestID uint64) (raffle.Guest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.Guest{}, err
	}

	var row guestRow
	if err := guestQuery(db).Where("guests.guest_id = ?", guestID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return raffle.Guest{}, raffle.ErrGuestNotFound
		}
		return raffle.Guest{}, errs.Wrap(err, "query guest")
	}
	return mapGuest(row), nil
}

func (r *RaffleRepository) ListGuests(ctx context.Context, eventID uint64) ([]raffle.Guest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []guestRow
	if err := guestQuery(db).
		Where("guests.event_id = ?", eventID).
		Order("guests.guest_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query guests")
	}

	items := make([]raffle.Guest, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapGuest(row))
	}
	return items, nil
}

func (r *RaffleRepository) GetEntry(ctx context.Context, entryID uint64) (raffle.Entry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.Entry{}, err
	}

	var row model.RaffleEntry
	if err := db.Where("entry_id = ?", entryID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return raffle.Entry{}, raffle.ErrEntryNotFound
		}
		return raffle.Entry{}, errs.Wrap(err, "query raffle entry")
	}
	return mapEntry(row), nil
}

func (r *RaffleRepository) ListEntries(ctx context.Context, filter ports.EntryFilter) ([]raffle.PendingEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.RaffleEntry
	if err := entryQuery(db, filter).Order("entry_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query raffle entries")
	}

	guests, err := loadGuests(db, guestIDsOf(rows))
	if err != nil {
		return nil, err
	}

	items := make([]raffle.PendingEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, raffle.PendingEntry{
			Entry: mapEntry(row),
			Guest: guests[row.GuestID],
		})
	}
	return items, nil
}

func (r *RaffleRepository) CountEntries(ctx context.Context, filter ports.EntryFilter) (ports.EntryCounts, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.EntryCounts{}, err
	}

	var rows []struct {
		Status string
		Total  int
	}
	if err := entryQuery(db, filter).
		Select("status, count(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return ports.EntryCounts{}, errs.Wrap(err, "count raffle entries")
	}

	var counts ports.EntryCounts
	for _, row := range rows {
		switch raffle.EntryStatus(row.Status) {
		case raffle.StatusPending:
			counts.Pending = row.Total
		case raffle.StatusWon:
			counts.Won = row.Total
		case raffle.StatusLost:
			counts.Lost = row.Total
		}
	}
	return counts, nil
}

func (r *RaffleRepository) CountWinners(ctx context.Context, prizeID uint64) (int, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.RaffleEntry{}).
		Where("prize_id = ? AND status = ?", prizeID, string(raffle.StatusWon)).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count prize winners")
	}
	return int(count), nil
}

func (r *RaffleRepository) ListWinners(ctx context.Context, eventID uint64, prizeID uint64) ([]ports.WinnerRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.RaffleEntry
	if err := entryQuery(db, ports.EntryFilter{
		EventID: eventID,
		PrizeID: prizeID,
		Status:  raffle.StatusWon,
	}).Order("drawn_at asc, position asc, entry_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query winners")
	}

	guests, err := loadGuests(db, guestIDsOf(rows))
	if err != nil {
		return nil, err
	}
	prizes, err := loadPrizes(db, prizeIDsOf(rows))
	if err != nil {
		return nil, err
	}

	items := make([]ports.WinnerRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.WinnerRecord{
			Entry: mapEntry(row),
			Guest: guests[row.GuestID],
			Prize: prizes[row.PrizeID],
		})
	}
	return items, nil
}

func (r *RaffleRepository) ListLogs(ctx context.Context, filter ports.LogFilter) ([]raffle.RaffleLog, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.RaffleLog{})
	if filter.EventID != 0 {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.PrizeID != 0 {
		query = query.Where("prize_id = ?", filter.PrizeID)
	}
	if filter.GuestID != 0 {
		query = query.Where("guest_id = ?", filter.GuestID)
	}
	if filter.ConfirmedOnly {
		query = query.Where("confirmed = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.RaffleLog
	if err := query.Order("log_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query raffle logs")
	}

	items := make([]raffle.RaffleLog, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLog(row))
	}
	return items, nil
}

func (r *RaffleRepository) GetQuotaAssignment(ctx context.Context, eventID uint64) (*raffle.QuotaAssignment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.QuotaAssignment
	if err := db.Where("event_id = ?", eventID).Limit(1).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query quota assignment")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &raffle.QuotaAssignment{
		EventID:    row.EventID,
		PrizeID:    row.PrizeID,
		AssignedAt: row.AssignedAt,
	}, nil
}

func (r *RaffleRepository) CreateEvent(ctx context.Context, event raffle.Event) (raffle.Event, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.Event{}, err
	}

	row := model.Event{
		Name:      event.Name,
		CreatedAt: nowUTCString(),
	}
	if err := db.Create(&row).Error; err != nil {
		return raffle.Event{}, errs.Wrap(err, "insert event")
	}
	return mapEvent(row), nil
}

func (r *RaffleRepository) CreateGuest(ctx context.Context, guest raffle.Guest) (raffle.Guest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.Guest{}, err
	}

	row := model.Guest{
		EventID:        guest.EventID,
		EmployeeNumber: guest.EmployeeNumber,
		FullName:       guest.FullName,
		Email:          guest.Email,
		Employer:       guest.Employer,
		Role:           guest.Role,
		RaffleCategory: guest.RaffleCategory,
		CreatedAt:      nowUTCString(),
	}
	if err := db.Create(&row).Error; err != nil {
		return raffle.Guest{}, errs.Wrap(err, "insert guest")
	}
	return mapGuest(guestRow{Guest: row}), nil
}

func (r *RaffleRepository) MarkAttendance(ctx context.Context, guestID uint64, at string) error {
	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return err
		}

		var count int64
		if err := db.Model(&model.Guest{}).Where("guest_id = ?", guestID).Count(&count).Error; err != nil {
			return errs.Wrap(err, "count guest")
		}
		if count == 0 {
			return raffle.ErrGuestNotFound
		}

		row := model.Attendance{GuestID: guestID, AttendedAt: at}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guest_id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert attendance")
		}
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := ports.WithTxContext(ctx, tx)
		return r.MarkAttendance(txCtx, guestID, at)
	})
}

func (r *RaffleRepository) CreatePrize(ctx context.Context, prize raffle.Prize) (raffle.Prize, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.Prize{}, err
	}

	unitState := prize.UnitState
	if unitState == "" {
		unitState = raffle.UnitStateFor(prize.Stock)
	}

	now := nowUTCString()
	row := model.Prize{
		EventID:    prize.EventID,
		Name:       prize.Name,
		Category:   prize.Category,
		Stock:      prize.Stock,
		UnitState:  string(unitState),
		IsActive:   prize.Active,
		IsSentinel: prize.Sentinel,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(&row).Error; err != nil {
		return raffle.Prize{}, errs.Wrap(err, "insert prize")
	}
	return mapPrize(row), nil
}

func (r *RaffleRepository) CreateEntry(ctx context.Context, input ports.EntryCreate) (raffle.Entry, bool, error) {
	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return raffle.Entry{}, false, err
		}

		createdAt := input.CreatedAt
		if createdAt == "" {
			createdAt = nowUTCString()
		}
		row := model.RaffleEntry{
			EventID:       input.EventID,
			GuestID:       input.GuestID,
			PrizeID:       input.PrizeID,
			Status:        string(raffle.StatusPending),
			Origin:        string(input.Origin),
			CorrelationID: input.CorrelationID,
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guest_id"}, {Name: "prize_id"}},
			DoNothing: true,
		}).Create(&row)
		if result.Error != nil {
			return raffle.Entry{}, false, errs.Wrap(result.Error, "insert raffle entry")
		}
		if result.RowsAffected > 0 {
			return mapEntry(row), true, nil
		}

		var existing model.RaffleEntry
		if err := db.Where("guest_id = ? AND prize_id = ?", input.GuestID, input.PrizeID).Take(&existing).Error; err != nil {
			return raffle.Entry{}, false, errs.Wrap(err, "query existing raffle entry")
		}
		return mapEntry(existing), false, nil
	}

	var (
		entry    raffle.Entry
		inserted bool
	)
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := ports.WithTxContext(ctx, tx)
		created, ok, err := r.CreateEntry(txCtx, input)
		if err != nil {
			return err
		}
		entry, inserted = created, ok
		return nil
	}); err != nil {
		return raffle.Entry{}, false, err
	}
	return entry, inserted, nil
}

func (r *RaffleRepository) MarkEntryWon(ctx context.Context, input ports.WinUpdate) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	updates := map[string]any{
		"status":       string(raffle.StatusWon),
		"position":     input.Position,
		"participants": input.Participants,
		"drawn_at":     input.DrawnAt,
		"updated_at":   input.DrawnAt,
	}
	if input.ReplacedGuestID != 0 {
		updates["replaced_guest_id"] = input.ReplacedGuestID
	}

	result := db.Model(&model.RaffleEntry{}).
		Where("entry_id = ? AND status = ?", input.EntryID, string(raffle.StatusPending)).
		Updates(updates)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "mark raffle entry won")
	}
	return result.RowsAffected == 1, nil
}

func (r *RaffleRepository) MarkPendingLost(ctx context.Context, prizeID uint64, drawnAt string, participants int) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Model(&model.RaffleEntry{}).
		Where("prize_id = ? AND status = ?", prizeID, string(raffle.StatusPending)).
		Updates(map[string]any{
			"status":       string(raffle.StatusLost),
			"participants": participants,
			"drawn_at":     drawnAt,
			"updated_at":   drawnAt,
		})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "mark pending entries lost")
	}
	return result.RowsAffected, nil
}

func (r *RaffleRepository) TransitionEntry(ctx context.Context, entryID uint64, from, to raffle.EntryStatus) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	updates := map[string]any{
		"status":     string(to),
		"updated_at": nowUTCString(),
	}
	if to == raffle.StatusPending {
		updates["drawn_at"] = nil
		updates["position"] = 0
		updates["participants"] = 0
	}

	result := db.Model(&model.RaffleEntry{}).
		Where("entry_id = ? AND status = ?", entryID, string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, errs.Wrapf(result.Error, "move raffle entry %d from %s to %s", entryID, from, to)
	}
	return result.RowsAffected == 1, nil
}

func (r *RaffleRepository) UpdateStock(ctx context.Context, prizeID uint64, expected, next int) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.Prize{}).
		Where("prize_id = ? AND stock = ?", prizeID, expected).
		Updates(map[string]any{
			"stock":      next,
			"unit_state": string(raffle.UnitStateFor(next)),
			"updated_at": nowUTCString(),
		})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "update prize stock")
	}
	return result.RowsAffected == 1, nil
}

func (r *RaffleRepository) AppendLog(ctx context.Context, log raffle.RaffleLog) (raffle.RaffleLog, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return raffle.RaffleLog{}, err
	}

	createdAt := log.CreatedAt
	if createdAt == "" {
		createdAt = nowUTCString()
	}
	row := model.RaffleLog{
		EventID:    log.EventID,
		PrizeID:    log.PrizeID,
		GuestID:    log.GuestID,
		RaffleType: string(log.Type),
		Confirmed:  log.Confirmed,
		CreatedAt:  createdAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return raffle.RaffleLog{}, errs.Wrap(err, "insert raffle log")
	}
	return mapLog(row), nil
}

func (r *RaffleRepository) ConfirmLatestLog(ctx context.Context, prizeID, guestID uint64) (bool, error) {
	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return false, err
		}

		var rows []model.RaffleLog
		if err := db.
			Where("prize_id = ? AND guest_id = ? AND confirmed = ?", prizeID, guestID, false).
			Order("log_id desc").
			Limit(1).
			Find(&rows).Error; err != nil {
			return false, errs.Wrap(err, "query unconfirmed raffle log")
		}
		if len(rows) == 0 {
			return false, nil
		}

		if err := db.Model(&model.RaffleLog{}).
			Where("log_id = ?", rows[0].LogID).
			Update("confirmed", true).Error; err != nil {
			return false, errs.Wrap(err, "confirm raffle log")
		}
		return true, nil
	}

	confirmed := false
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := ports.WithTxContext(ctx, tx)
		ok, err := r.ConfirmLatestLog(txCtx, prizeID, guestID)
		if err != nil {
			return err
		}
		confirmed = ok
		return nil
	}); err != nil {
		return false, err
	}
	return confirmed, nil
}

func (r *RaffleRepository) UnconfirmLogs(ctx context.Context, prizeID, guestID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.RaffleLog{}).
		Where("prize_id = ? AND guest_id = ?", prizeID, guestID).
		Update("confirmed", false).Error; err != nil {
		return errs.Wrap(err, "unconfirm raffle logs")
	}
	return nil
}

func (r *RaffleRepository) CreateQuotaAssignment(ctx context.Context, assignment raffle.QuotaAssignment) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.QuotaAssignment{
		EventID:    assignment.EventID,
		PrizeID:    assignment.PrizeID,
		AssignedAt: assignment.AssignedAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert quota assignment")
	}
	return result.RowsAffected > 0, nil
}

func entryQuery(db *gorm.DB, filter ports.EntryFilter) *gorm.DB {
	query := db.Model(&model.RaffleEntry{})
	if filter.EventID != 0 {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.PrizeID != 0 {
		query = query.Where("prize_id = ?", filter.PrizeID)
	}
	if filter.GuestID != 0 {
		query = query.Where("guest_id = ?", filter.GuestID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	return query
}

func loadGuests(db *gorm.DB, ids []uint64) (map[uint64]raffle.Guest, error) {
	out := make(map[uint64]raffle.Guest, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []guestRow
	if err := guestQuery(db).Where("guests.guest_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query entry guests")
	}
	for _, row := range rows {
		out[row.GuestID] = mapGuest(row)
	}
	return out, nil
}

func loadPrizes(db *gorm.DB, ids []uint64) (map[uint64]raffle.Prize, error) {
	out := make(map[uint64]raffle.Prize, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []model.Prize
	if err := db.Where("prize_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query entry prizes")
	}
	for _, row := range rows {
		out[row.PrizeID] = mapPrize(row)
	}
	return out, nil
}

func guestIDsOf(rows []model.RaffleEntry) []uint64 {
	seen := make(map[uint64]struct{}, len(rows))
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.GuestID]; ok {
			continue
		}
		seen[row.GuestID] = struct{}{}
		ids = append(ids, row.GuestID)
	}
	return ids
}

func prizeIDsOf(rows []model.RaffleEntry) []uint64 {
	seen := make(map[uint64]struct{}, len(rows))
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.PrizeID]; ok {
			continue
		}
		seen[row.PrizeID] = struct{}{}
		ids = append(ids, row.PrizeID)
	}
	return ids
}

func mapEvent(row model.Event) raffle.Event {
	return raffle.Event{
		ID:        row.EventID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
	}
}

func mapGuest(row guestRow) raffle.Guest {
	return raffle.Guest{
		ID:             row.GuestID,
		EventID:        row.EventID,
		EmployeeNumber: row.EmployeeNumber,
		FullName:       row.FullName,
		Email:          row.Email,
		Employer:       row.Employer,
		Role:           row.Role,
		RaffleCategory: row.RaffleCategory,
		Attended:       row.AttendedAt != nil,
	}
}

func mapPrize(row model.Prize) raffle.Prize {
	return raffle.Prize{
		ID:        row.PrizeID,
		EventID:   row.EventID,
		Name:      row.Name,
		Category:  row.Category,
		Stock:     row.Stock,
		UnitState: raffle.UnitState(row.UnitState),
		Active:    row.IsActive,
		Sentinel:  row.IsSentinel,
	}
}

func mapEntry(row model.RaffleEntry) raffle.Entry {
	entry := raffle.Entry{
		ID:            row.EntryID,
		EventID:       row.EventID,
		GuestID:       row.GuestID,
		PrizeID:       row.PrizeID,
		Status:        raffle.EntryStatus(row.Status),
		Position:      row.Position,
		Participants:  row.Participants,
		Origin:        raffle.Origin(row.Origin),
		CorrelationID: row.CorrelationID,
		CreatedAt:     row.CreatedAt,
	}
	if row.DrawnAt != nil {
		entry.DrawnAt = *row.DrawnAt
	}
	if row.ReplacedGuestID != nil {
		entry.ReplacedGuestID = *row.ReplacedGuestID
	}
	return entry
}

func mapLog(row model.RaffleLog) raffle.RaffleLog {
	return raffle.RaffleLog{
		ID:        row.LogID,
		EventID:   row.EventID,
		PrizeID:   row.PrizeID,
		GuestID:   row.GuestID,
		Type:      raffle.RaffleType(row.RaffleType),
		Confirmed: row.Confirmed,
		CreatedAt: row.CreatedAt,
	}
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
