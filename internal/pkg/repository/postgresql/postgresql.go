package postgresql

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/auth"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Database wraps the bun connection with the helpers every repository needs.
type Database struct {
	*bun.DB
	validate *validator.Validate
}

func NewDB(dsn string) *Database {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.FromEnv("BUNDEBUG")))

	return &Database{
		DB:       db,
		validate: validator.New(),
	}
}

// ValidateStruct validates the listed fields of the given struct and converts
// failures into request errors.
func (d Database) ValidateStruct(s interface{}, requiredFields ...string) error {
	err := d.validate.StructPartial(s, requiredFields...)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "validating struct"), http.StatusBadRequest)
	}
	return nil
}

// CheckClaims pulls the authenticated claims out of the context and verifies
// the role when one is required.
func (d Database) CheckClaims(ctx context.Context, roles ...string) (auth.Claims, error) {
	claims, ok := ctx.Value(auth.Key).(auth.Claims)
	if !ok {
		return auth.Claims{}, web.NewRequestError(errors.New("claims missing from context"), http.StatusUnauthorized)
	}

	if len(roles) > 0 && !claims.Authorized(roles...) {
		return auth.Claims{}, web.NewRequestError(errors.New("attempted action is not allowed"), http.StatusUnauthorized)
	}

	return claims, nil
}

// DeleteRow soft-deletes a row by id, stamping who removed it. The table must
// carry a company_id column; rows of other tenants are never touched.
func (d Database) DeleteRow(ctx context.Context, table string, id int) error {
	claims, err := d.CheckClaims(ctx)
	if err != nil {
		return err
	}

	q := d.NewUpdate().Table(table).Where("deleted_at IS NULL AND id = ? AND company_id = ?", id, claims.CompanyID)
	q.Set("deleted_at = ?", time.Now())
	q.Set("deleted_by = ?", claims.UserId)

	res, err := q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrapf(err, "deleting from %s", table), http.StatusBadRequest)
	}

	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return web.NewRequestError(errors.New("row not found"), http.StatusNotFound)
	}

	return nil
}
