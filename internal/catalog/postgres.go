package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository loads reference data maintained in Postgres.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository creates a repository over a pgx pool (or any type
// with the same Query method).
func NewPostgresRepository(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	selectSalons = `SELECT id, city, address, postal, phone FROM salons ORDER BY position, id`

	selectSpecialists = `SELECT id, name, title, salon_id, restricted_only FROM specialists ORDER BY position, id`

	selectServices = `SELECT id, name, description, requires_phone_booking, specialist_ids FROM services ORDER BY position, id`

	selectServiceSalons = `SELECT service_id, salon_id FROM service_salons ORDER BY service_id, salon_id`
)

// Load reads all reference tables and builds a validated Catalog.
func (r *PostgresRepository) Load(ctx context.Context) (*Catalog, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("catalog: database not configured")
	}

	salons, err := collect(ctx, r.db, selectSalons, func(row pgx.Rows) (Salon, error) {
		var s Salon
		err := row.Scan(&s.ID, &s.City, &s.Address, &s.Postal, &s.Phone)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: load salons: %w", err)
	}

	specialists, err := collect(ctx, r.db, selectSpecialists, func(row pgx.Rows) (Specialist, error) {
		var sp Specialist
		err := row.Scan(&sp.ID, &sp.Name, &sp.Title, &sp.SalonID, &sp.RestrictedOnly)
		return sp, err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: load specialists: %w", err)
	}

	services, err := collect(ctx, r.db, selectServices, func(row pgx.Rows) (Service, error) {
		var svc Service
		err := row.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.RequiresPhoneBooking, &svc.SpecialistIDs)
		return svc, err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: load services: %w", err)
	}

	type link struct{ serviceID, salonID string }
	links, err := collect(ctx, r.db, selectServiceSalons, func(row pgx.Rows) (link, error) {
		var l link
		err := row.Scan(&l.serviceID, &l.salonID)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: load service salons: %w", err)
	}

	index := make(map[string]int, len(services))
	for i, svc := range services {
		index[svc.ID] = i
	}
	for _, l := range links {
		i, ok := index[l.serviceID]
		if !ok {
			return nil, fmt.Errorf("%w: salon link for unknown service %q", ErrInvalid, l.serviceID)
		}
		services[i].AvailableInSalons = append(services[i].AvailableInSalons, l.salonID)
	}

	return New(salons, specialists, services)
}

func collect[T any](ctx context.Context, q db, sql string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
