package catalog

// Service exposes the in-memory paper catalog. The list is fixed after boot:
// one fetch fills it, a fetch failure leaves it empty.
type Service interface {
	List() []PaperType
	Get(id int) (PaperType, bool)
	Default() (PaperType, bool)
}

type service struct {
	papers []PaperType
}

// NewService pins the loaded catalog. A nil or empty slice yields an empty
// catalog that answers every lookup negatively.
func NewService(papers []PaperType) Service {
	pinned := make([]PaperType, len(papers))
	copy(pinned, papers)
	return &service{papers: pinned}
}

// List returns the catalog in document order.
func (s *service) List() []PaperType {
	out := make([]PaperType, len(s.papers))
	copy(out, s.papers)
	return out
}

// Get returns the paper type with the given id.
func (s *service) Get(id int) (PaperType, bool) {
	for _, paper := range s.papers {
		if paper.ID == id {
			return paper, true
		}
	}
	return PaperType{}, false
}

// Default returns the first catalog entry, which is the pre-selected paper
// type for a fresh order form.
func (s *service) Default() (PaperType, bool) {
	if len(s.papers) == 0 {
		return PaperType{}, false
	}
	return s.papers[0], true
}
