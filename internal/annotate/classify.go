package annotate

// Classifier assigns the exclusive category of a record. Precedence is
// OVERRIDE > FUNCTIONAL > CLINICAL > LOF.
type Classifier struct {
	function map[string]bool
	clinical map[string]bool
	lof      map[string]bool
}

// NewClassifier creates a classifier from the configured label sets.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		function: toSet(cfg.FunctionLabels),
		clinical: toSet(cfg.ClinicalLabels),
		lof:      toSet(cfg.LOFCodes),
	}
}

// IsFunctional reports whether the functional status is a reduced-function label.
func (c *Classifier) IsFunctional(r *Record) bool { return c.function[r.Function] }

// IsClinical reports whether the clinical significance is pathogenic-class.
func (c *Classifier) IsClinical(r *Record) bool { return c.clinical[r.ClinSig] }

// IsLOF reports whether the loss-of-function tag is a configured impact code.
func (c *Classifier) IsLOF(r *Record) bool { return c.lof[r.LOF] }

// Classify returns the first category whose predicate holds, or CategoryNone.
func (c *Classifier) Classify(r *Record) Category {
	switch {
	case r.Override:
		return CategoryOverride
	case c.IsFunctional(r):
		return CategoryFunctional
	case c.IsClinical(r):
		return CategoryClinical
	case c.IsLOF(r):
		return CategoryLOF
	}
	return CategoryNone
}

// Matches reports whether any of the four predicates holds, ignoring
// precedence. This is the membership test of the ALL table.
func (c *Classifier) Matches(r *Record) bool {
	return r.Override || c.IsFunctional(r) || c.IsClinical(r) || c.IsLOF(r)
}

// Tables are the exported record sets of one run.
type Tables struct {
	Clean      []*Record // every record, before the filter gate
	Override   []*Record
	Functional []*Record
	Clinical   []*Record
	LOF        []*Record
	All        []*Record // union of the four predicates
}

// NamedTable pairs a table with its export name.
type NamedTable struct {
	Name    string
	Records []*Record
}

// Named returns the tables in export order.
func (t *Tables) Named() []NamedTable {
	return []NamedTable{
		{"clean", t.Clean},
		{"override", t.Override},
		{"functional", t.Functional},
		{"clinical", t.Clinical},
		{"lof", t.LOF},
		{"all", t.All},
	}
}

// Filtered returns the five category tables, excluding the clean set.
func (t *Tables) Filtered() []NamedTable {
	return t.Named()[1:]
}

// Split assigns a category to each record passing the filter gate and
// distributes the records into tables. Records failing the gate keep
// CategoryNone and only appear in Clean.
func (c *Classifier) Split(records []*Record) *Tables {
	t := &Tables{Clean: records}
	for _, r := range records {
		if !r.IsPass() {
			r.Category = CategoryNone
			continue
		}
		r.Category = c.Classify(r)
		switch r.Category {
		case CategoryOverride:
			t.Override = append(t.Override, r)
		case CategoryFunctional:
			t.Functional = append(t.Functional, r)
		case CategoryClinical:
			t.Clinical = append(t.Clinical, r)
		case CategoryLOF:
			t.LOF = append(t.LOF, r)
		}
		if c.Matches(r) {
			t.All = append(t.All, r)
		}
	}
	return t
}
