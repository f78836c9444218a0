package gateway

// Progress is reported while a fetch runs. It is either a Stage, naming what the fetch is doing, or a Count with
// running totals; callers tell them apart with a type switch.
type Progress interface {
	progress()
}

type Stage string

const (
	StageLookup    Stage = "lookup"
	StageFetching  Stage = "fetching"
	StageAnalyzing Stage = "analyzing"
)

func (Stage) progress() {}

// Count holds cumulative totals after a page. Successive counts never decrease.
type Count struct {
	Posts int `json:"posts"`
	Pages int `json:"pages"`
}

func (Count) progress() {}

type ProgressFunc func(Progress)

func (f ProgressFunc) emit(p Progress) {
	if f != nil {
		f(p)
	}
}
