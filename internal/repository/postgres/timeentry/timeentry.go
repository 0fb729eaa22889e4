package timeentry

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/auth"
	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/pkg/repository/postgresql"
	"timeclock/backend/internal/repository/postgres"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// GetTodayEntry returns the open or most recent non-correction entry for the
// worker on the given work day, or nil when the worker has not clocked in.
// Called from the webhook path, so it must not expect admin claims.
func (r Repository) GetTodayEntry(ctx context.Context, workerID, companyID int, workDay string) (*entity.TimeEntry, error) {
	var detail entity.TimeEntry

	err := r.NewSelect().
		Model(&detail).
		Where("worker_id = ? AND company_id = ? AND work_day = ? AND is_correction = false AND deleted_at IS NULL",
			workerID, companyID, workDay).
		OrderExpr("(clock_out IS NULL) DESC, clock_in DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting today's entry")
	}

	return &detail, nil
}

func (r Repository) Create(ctx context.Context, detail *entity.TimeEntry) error {
	detail.CreatedAt = time.Now()

	_, err := r.NewInsert().Model(detail).Returning("id").Exec(ctx, &detail.ID)
	if err != nil {
		return errors.Wrap(err, "creating time entry")
	}

	return nil
}

func (r Repository) SetLunchOut(ctx context.Context, id int, t time.Time) error {
	return r.setColumn(ctx, id, "lunch_out", t)
}

func (r Repository) SetLunchIn(ctx context.Context, id int, t time.Time) error {
	return r.setColumn(ctx, id, "lunch_in", t)
}

func (r Repository) SetClockOut(ctx context.Context, id int, t time.Time) error {
	return r.setColumn(ctx, id, "clock_out", t)
}

func (r Repository) setColumn(ctx context.Context, id int, column string, t time.Time) error {
	q := r.NewUpdate().Table("time_entries").Where("deleted_at IS NULL AND id = ?", id)
	q.Set(fmt.Sprintf("%s = ?", column), t)
	q.Set("updated_at = ?", time.Now())

	_, err := q.Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "updating time entry %s", column)
	}

	return nil
}

func (r Repository) GetById(ctx context.Context, id int) (entity.TimeEntry, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return entity.TimeEntry{}, err
	}

	var detail entity.TimeEntry

	err = r.NewSelect().Model(&detail).
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, claims.CompanyID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.TimeEntry{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return detail, err
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin, auth.RoleDashboard)
	if err != nil {
		return nil, 0, err
	}

	whereQuery := fmt.Sprintf(`
			WHERE
				t.deleted_at IS NULL AND t.is_correction = false AND t.company_id = %d
			`, claims.CompanyID)

	if filter.WorkerID != nil {
		whereQuery += fmt.Sprintf(" AND t.worker_id = %d", *filter.WorkerID)
	}

	if filter.Date != nil {
		parsed, err := time.Parse("2006-01-02", *filter.Date)
		if err != nil {
			return []GetListResponse{}, 0, web.NewRequestError(errors.Wrap(err, "date parse"), http.StatusBadRequest)
		}
		whereQuery += fmt.Sprintf(" AND t.work_day = '%s'", parsed.Format("2006-01-02"))
	} else {
		today := time.Now().UTC().Format("2006-01-02")
		whereQuery += fmt.Sprintf(" AND t.work_day = '%s'", today)
	}
	orderQuery := "ORDER BY t.clock_in desc"

	var limitQuery, offsetQuery string

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}

	if filter.Limit != nil {
		limitQuery += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	if filter.Offset != nil {
		offsetQuery += fmt.Sprintf(" OFFSET %d", *filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT
			t.id,
			t.worker_id,
			w.first_name,
			w.last_name,
			t.work_day,
			t.clock_in,
			t.clock_out,
			t.lunch_out,
			t.lunch_in,
			t.source
		FROM time_entries t
		LEFT JOIN workers w ON w.id = t.worker_id
		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting time entries"), http.StatusInternalServerError)
	}

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		var workDayString string

		if err = rows.Scan(
			&detail.ID,
			&detail.WorkerID,
			&detail.FirstName,
			&detail.LastName,
			&workDayString,
			&detail.ClockIn,
			&detail.ClockOut,
			&detail.LunchOut,
			&detail.LunchIn,
			&detail.Source); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning time entry list"), http.StatusBadRequest)
		}

		workDay, err := date.ParseDate(workDayString)
		if err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "converting work_day to date.Date"), http.StatusBadRequest)
		}
		detail.WorkDay = &workDay

		if detail.ClockIn != nil && detail.ClockOut != nil {
			timeDiff := detail.ClockOut.Sub(*detail.ClockIn)

			hours := int(timeDiff.Hours())
			minutes := int(timeDiff.Minutes()) % 60

			detail.TotalHours = fmt.Sprintf("%02d:%02d", hours, minutes)
		}

		list = append(list, detail)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(t.id)
		FROM time_entries t
		%s
	`, whereQuery)

	count := 0
	if err = r.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning time entry count"), http.StatusInternalServerError)
	}

	return list, count, nil
}

// Correct supersedes an entry with an admin-adjusted copy. The original row is
// flagged as a correction source and kept; history is never mutated in place.
func (r Repository) Correct(ctx context.Context, request CorrectionRequest) (entity.TimeEntry, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return entity.TimeEntry{}, err
	}

	if err := r.ValidateStruct(&request, "EntryID", "ClockIn"); err != nil {
		return entity.TimeEntry{}, err
	}

	original, err := r.GetById(ctx, request.EntryID)
	if err != nil {
		return entity.TimeEntry{}, err
	}

	// The date column may scan back with a time suffix.
	workDay := original.WorkDay
	if len(workDay) > 10 {
		workDay = workDay[:10]
	}

	parseAt := func(value string) (time.Time, error) {
		clock, err := time.Parse("15:04", value)
		if err != nil {
			return time.Time{}, web.NewRequestError(errors.Wrap(err, "parsing time"), http.StatusBadRequest)
		}
		day, err := time.Parse("2006-01-02", workDay)
		if err != nil {
			return time.Time{}, web.NewRequestError(errors.Wrap(err, "parsing work day"), http.StatusBadRequest)
		}
		return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
	}

	clockIn, err := parseAt(request.ClockIn)
	if err != nil {
		return entity.TimeEntry{}, err
	}

	replacement := entity.TimeEntry{
		WorkerID:         original.WorkerID,
		CompanyID:        original.CompanyID,
		WorkDay:          workDay,
		ClockIn:          clockIn,
		BreakMinutes:     request.BreakMinutes,
		Source:           original.Source,
		CorrectedEntryID: &original.ID,
	}

	for _, field := range []struct {
		value  *string
		target **time.Time
	}{
		{request.ClockOut, &replacement.ClockOut},
		{request.LunchOut, &replacement.LunchOut},
		{request.LunchIn, &replacement.LunchIn},
	} {
		if field.value == nil {
			continue
		}
		t, err := parseAt(*field.value)
		if err != nil {
			return entity.TimeEntry{}, err
		}
		*field.target = &t
	}

	replacement.CreatedAt = time.Now()
	replacement.CreatedBy = &claims.UserId

	err = r.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().Table("time_entries").Where("deleted_at IS NULL AND id = ?", original.ID)
		q.Set("is_correction = true")
		q.Set("updated_at = ?", time.Now())
		q.Set("updated_by = ?", claims.UserId)
		if _, err := q.Exec(ctx); err != nil {
			return errors.Wrap(err, "flagging corrected entry")
		}

		if _, err := tx.NewInsert().Model(&replacement).Returning("id").Exec(ctx, &replacement.ID); err != nil {
			return errors.Wrap(err, "inserting correction entry")
		}

		return nil
	})
	if err != nil {
		return entity.TimeEntry{}, web.NewRequestError(errors.Wrap(err, "correcting time entry"), http.StatusBadRequest)
	}

	return replacement, nil
}
