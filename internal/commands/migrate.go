package commands

import (
	"fmt"
	"log"

	"timeclock/backend/internal/pkg/repository/postgresql"
)

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create table: companies.",
		Query: `
        CREATE TABLE IF NOT EXISTS companies (
            id serial primary key,
            name text not null,
            latitude double precision,
            longitude double precision,
            geofence_radius double precision,
            created_at timestamp default now(),
            created_by int,
            updated_at timestamp,
            updated_by int,
            deleted_at timestamp,
            deleted_by int
        );`,
	},
	{
		Index:       2,
		Description: "Create table: users.",
		Query: `
        CREATE TABLE IF NOT EXISTS users (
            id serial primary key,
            company_id int not null references companies(id),
            email text not null,
            full_name text,
            password text not null,
            role text default 'ADMIN',
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       3,
		Description: "Unique active email per admin account.",
		Query: `
        CREATE UNIQUE INDEX IF NOT EXISTS users_email_active
            ON users (lower(email)) WHERE deleted_at IS NULL;`,
	},
	{
		Index:       4,
		Description: "Create table: workers.",
		Query: `
        CREATE TABLE IF NOT EXISTS workers (
            id serial primary key,
            company_id int not null references companies(id),
            first_name text,
            last_name text,
            phone text,
            whatsapp_id text,
            telegram_id text,
            messenger_id text,
            preferred_communication text default 'sms',
            active boolean default true,
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       5,
		Description: "Channel identity lookup indexes for workers.",
		Query: `
        CREATE INDEX IF NOT EXISTS workers_phone ON workers (phone) WHERE deleted_at IS NULL;
        CREATE INDEX IF NOT EXISTS workers_whatsapp_id ON workers (whatsapp_id) WHERE deleted_at IS NULL;
        CREATE INDEX IF NOT EXISTS workers_telegram_id ON workers (telegram_id) WHERE deleted_at IS NULL;
        CREATE INDEX IF NOT EXISTS workers_messenger_id ON workers (messenger_id) WHERE deleted_at IS NULL;`,
	},
	{
		Index:       6,
		Description: "Create table: time_entries.",
		Query: `
        CREATE TABLE IF NOT EXISTS time_entries (
            id serial primary key,
            worker_id int not null references workers(id),
            company_id int not null references companies(id),
            work_day date not null,
            clock_in timestamp not null,
            clock_out timestamp,
            lunch_out timestamp,
            lunch_in timestamp,
            break_minutes int,
            source text,
            is_correction boolean not null default false,
            corrected_entry_id int references time_entries(id),
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       7,
		Description: "One open uncorrected entry per worker per day.",
		Query: `
        CREATE UNIQUE INDEX IF NOT EXISTS time_entries_one_open_per_day
            ON time_entries (worker_id, work_day)
            WHERE clock_out IS NULL AND is_correction = false AND deleted_at IS NULL;`,
	},
	{
		Index:       8,
		Description: "Day lookup index for time_entries.",
		Query: `
        CREATE INDEX IF NOT EXISTS time_entries_worker_day
            ON time_entries (worker_id, work_day) WHERE deleted_at IS NULL;`,
	},
	{
		Index:       9,
		Description: "Create table: location_verifications.",
		Query: `
        CREATE TABLE IF NOT EXISTS location_verifications (
            id serial primary key,
            token text not null,
            worker_id int not null references workers(id),
            company_id int not null references companies(id),
            platform text not null,
            status text not null default 'pending',
            expires_at timestamp not null,
            created_at timestamp default now(),
            created_by int,
            updated_at timestamp,
            updated_by int,
            deleted_at timestamp,
            deleted_by int
        );`,
	},
	{
		Index:       10,
		Description: "Unique token lookup for location_verifications.",
		Query: `
        CREATE UNIQUE INDEX IF NOT EXISTS location_verifications_token
            ON location_verifications (token);`,
	},
	{
		Index:       11,
		Description: "Create table: message_logs.",
		Query: `
        CREATE TABLE IF NOT EXISTS message_logs (
            id serial primary key,
            company_id int references companies(id),
            worker_id int references workers(id),
            direction text not null,
            platform text not null,
            message_type text not null default 'text',
            to_address text,
            from_address text,
            body text not null,
            status text not null,
            external_id text,
            created_at timestamp default now(),
            created_by int,
            updated_at timestamp,
            updated_by int,
            deleted_at timestamp,
            deleted_by int
        );`,
	},
	{
		Index:       12,
		Description: "Worker history index for message_logs.",
		Query: `
        CREATE INDEX IF NOT EXISTS message_logs_worker
            ON message_logs (worker_id, created_at);`,
	},
	{
		Index:       13,
		Description: "Seed company and admin with email: admin@example.com, password: 1",
		Query: `
        INSERT INTO companies (name)
        SELECT 'Default Company'
        WHERE NOT EXISTS (SELECT id FROM companies);
        INSERT INTO users (company_id, email, role, password)
        SELECT (SELECT min(id) FROM companies), 'admin@example.com', 'ADMIN', '$2a$10$NKtnMwDPFSQLG6uOi4Zqheru5Ygbj9TWFHjpl478rRSaO5cJ9QuH2'
        WHERE NOT EXISTS (SELECT email FROM users WHERE email = 'admin@example.com');
        `,
	},
}

// MigrateUP applies the pending schema entries, tracking progress in
// schema_migrations so a failed step can be retried.
func MigrateUP(db *postgresql.Database) {
	var (
		version int
		dirty   bool
		er      *string
	)
	err := db.QueryRow("SELECT version, dirty, error FROM schema_migrations").Scan(&version, &dirty, &er)
	if err != nil {
		if err.Error() == `ERROR: relation "schema_migrations" does not exist (SQLSTATE=42P01)` {
			if _, err = db.Exec(`
				CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text);
				DELETE FROM schema_migrations;
				INSERT INTO schema_migrations (version, dirty) values (0, false);
			`); err != nil {
				log.Fatalln("migrate schema_migrations create error", err)
			}
			version = 0
			dirty = false
		} else {
			log.Fatalln("migrate schema_migrations scan: ", err)
		}
	}

	if dirty {
		for _, v := range scheme {
			if v.Index == version {
				if _, err = db.Exec(v.Query); err != nil {
					if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET error = '%s'`, err.Error())); err != nil {
						log.Fatalln("migrate error", err)
					}
					log.Fatalln(fmt.Sprintf("migrate error version: %d", version), err)
				}
				if _, err = db.Exec(`UPDATE schema_migrations SET dirty = false, error = null`); err != nil {
					log.Fatalln("migrate error", err)
				}
			}
		}
	}

	for _, s := range scheme {
		if s.Index > version {
			if _, err = db.Exec(s.Query); err != nil {
				if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET error = '%s', version = %d, dirty = true`, err.Error(), s.Index)); err != nil {
					log.Fatalln("migrate error", err)
				}
				log.Fatalln(fmt.Sprintf("migrate error version: %d", s.Index), err)
			}
			if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET version = %d`, s.Index)); err != nil {
				log.Fatalln("migrate error", err)
			}
		}
	}
}
