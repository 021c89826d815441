package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown ids.
	ErrNotFound = errors.New("catalog: not found")

	// ErrInvalid is returned when reference data is inconsistent.
	ErrInvalid = errors.New("catalog: invalid reference data")
)

// Catalog is an immutable, indexed view of the reference data.
type Catalog struct {
	salons      []Salon
	specialists []Specialist
	services    []Service

	salonByID      map[string]Salon
	specialistByID map[string]Specialist
	serviceByID    map[string]Service
}

// New validates and indexes reference data. Order is preserved for listing.
func New(salons []Salon, specialists []Specialist, services []Service) (*Catalog, error) {
	c := &Catalog{
		salons:         append([]Salon(nil), salons...),
		specialists:    append([]Specialist(nil), specialists...),
		services:       append([]Service(nil), services...),
		salonByID:      make(map[string]Salon, len(salons)),
		specialistByID: make(map[string]Specialist, len(specialists)),
		serviceByID:    make(map[string]Service, len(services)),
	}

	for _, s := range salons {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: salon without id", ErrInvalid)
		}
		if _, dup := c.salonByID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate salon %q", ErrInvalid, s.ID)
		}
		c.salonByID[s.ID] = s
	}
	for _, sp := range specialists {
		if sp.ID == "" {
			return nil, fmt.Errorf("%w: specialist without id", ErrInvalid)
		}
		if _, dup := c.specialistByID[sp.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate specialist %q", ErrInvalid, sp.ID)
		}
		if _, ok := c.salonByID[sp.SalonID]; !ok {
			return nil, fmt.Errorf("%w: specialist %q references unknown salon %q", ErrInvalid, sp.ID, sp.SalonID)
		}
		c.specialistByID[sp.ID] = sp
	}
	for _, svc := range services {
		if svc.ID == "" {
			return nil, fmt.Errorf("%w: service without id", ErrInvalid)
		}
		if _, dup := c.serviceByID[svc.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate service %q", ErrInvalid, svc.ID)
		}
		for _, salonID := range svc.AvailableInSalons {
			if _, ok := c.salonByID[salonID]; !ok {
				return nil, fmt.Errorf("%w: service %q references unknown salon %q", ErrInvalid, svc.ID, salonID)
			}
		}
		for _, spID := range svc.SpecialistIDs {
			if _, ok := c.specialistByID[spID]; !ok {
				return nil, fmt.Errorf("%w: service %q references unknown specialist %q", ErrInvalid, svc.ID, spID)
			}
		}
		c.serviceByID[svc.ID] = svc
	}
	return c, nil
}

// Salons lists all salons.
func (c *Catalog) Salons() []Salon {
	return append([]Salon(nil), c.salons...)
}

// Specialists lists all specialists.
func (c *Catalog) Specialists() []Specialist {
	return append([]Specialist(nil), c.specialists...)
}

// Services lists all services.
func (c *Catalog) Services() []Service {
	return append([]Service(nil), c.services...)
}

// Salon looks up a salon.
func (c *Catalog) Salon(id string) (Salon, error) {
	s, ok := c.salonByID[id]
	if !ok {
		return Salon{}, fmt.Errorf("%w: salon %q", ErrNotFound, id)
	}
	return s, nil
}

// Specialist looks up a specialist.
func (c *Catalog) Specialist(id string) (Specialist, error) {
	sp, ok := c.specialistByID[id]
	if !ok {
		return Specialist{}, fmt.Errorf("%w: specialist %q", ErrNotFound, id)
	}
	return sp, nil
}

// Service looks up a service.
func (c *Catalog) Service(id string) (Service, error) {
	svc, ok := c.serviceByID[id]
	if !ok {
		return Service{}, fmt.Errorf("%w: service %q", ErrNotFound, id)
	}
	return svc, nil
}

// ServicesForSalon lists services offered in the salon.
func (c *Catalog) ServicesForSalon(salonID string) []Service {
	var out []Service
	for _, svc := range c.services {
		if svc.AvailableIn(salonID) {
			out = append(out, svc)
		}
	}
	return out
}

// EligibleSpecialists returns the specialists that may be offered for the
// service in the salon. A restricted service yields the intersection of its
// specialist set with the salon's specialists; any other service yields the
// salon's specialists except those reserved for restricted services.
func (c *Catalog) EligibleSpecialists(salonID string, svc Service) []Specialist {
	if !svc.AvailableIn(salonID) {
		return nil
	}
	var out []Specialist
	for _, sp := range c.specialists {
		if sp.SalonID != salonID {
			continue
		}
		if svc.Allows(sp) {
			out = append(out, sp)
		}
	}
	return out
}

// IsEligible reports whether a specialist may be chosen for the service in
// the salon.
func (c *Catalog) IsEligible(salonID string, svc Service, specialistID string) bool {
	for _, sp := range c.EligibleSpecialists(salonID, svc) {
		if sp.ID == specialistID {
			return true
		}
	}
	return false
}

// KeepSpecialists returns a catalog without the specialists keep rejects,
// along with their ids. Restricted services lose the dropped ids but stay
// restricted.
func (c *Catalog) KeepSpecialists(keep func(id string) bool) (*Catalog, []string, error) {
	var dropped []string
	specialists := make([]Specialist, 0, len(c.specialists))
	for _, sp := range c.specialists {
		if keep(sp.ID) {
			specialists = append(specialists, sp)
		} else {
			dropped = append(dropped, sp.ID)
		}
	}
	if len(dropped) == 0 {
		return c, nil, nil
	}

	services := make([]Service, 0, len(c.services))
	for _, svc := range c.services {
		if svc.Restricted() {
			ids := make([]string, 0, len(svc.SpecialistIDs))
			for _, id := range svc.SpecialistIDs {
				if keep(id) {
					ids = append(ids, id)
				}
			}
			svc.SpecialistIDs = ids
		}
		services = append(services, svc)
	}

	out, err := New(c.salons, specialists, services)
	if err != nil {
		return nil, dropped, err
	}
	return out, dropped, nil
}
