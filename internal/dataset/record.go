package dataset

// Column names read from paper metadata files.
const (
	ColTitle       = "title"
	ColAbstract    = "abstract"
	ColPublishTime = "publish_time"
	ColJournal     = "journal"
	ColSource      = "source_x"
)

// RequiredColumns lists the columns every metadata file must carry.
var RequiredColumns = []string{ColTitle, ColAbstract, ColPublishTime, ColJournal, ColSource}

// Record is one row of paper metadata. Records have no identity beyond their
// position in the file.
type Record struct {
	Row         int
	Title       Nullable[string]
	Abstract    Nullable[string]
	PublishTime Nullable[string]
	Journal     Nullable[string]
	Source      Nullable[string]
}

// Records projects the metadata columns. The header is validated up front so a
// missing column fails here instead of at first use.
func (t *Table) Records() ([]Record, error) {
	if err := t.Validate(RequiredColumns...); err != nil {
		return nil, err
	}
	ti, _ := t.Column(ColTitle)
	ai, _ := t.Column(ColAbstract)
	pi, _ := t.Column(ColPublishTime)
	ji, _ := t.Column(ColJournal)
	si, _ := t.Column(ColSource)

	out := make([]Record, len(t.Rows))
	for i := range t.Rows {
		out[i] = Record{
			Row:         i + 1,
			Title:       t.Cell(i, ti),
			Abstract:    t.Cell(i, ai),
			PublishTime: t.Cell(i, pi),
			Journal:     t.Cell(i, ji),
			Source:      t.Cell(i, si),
		}
	}
	return out, nil
}
