package ports

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Page selects up to Limit rows whose id sorts after StartAfter.
type Page struct {
	Limit      int
	StartAfter string
}

// Clamp applies the default and maximum page size.
func (p Page) Clamp() Page {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	return p
}
