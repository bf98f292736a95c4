package rfm

// Segment is the marketing label assigned to an RFM score code.
type Segment string

const (
	SegmentChampions         Segment = "Champions"
	SegmentLoyal             Segment = "Loyal Customers"
	SegmentPotentialLoyalist Segment = "Potential Loyalist"
	SegmentNew               Segment = "New Customers"
	SegmentAtRisk            Segment = "At Risk Customers"
	SegmentNeedAttention     Segment = "Need Attention"
	SegmentHibernating       Segment = "Hibernating"
	SegmentLost              Segment = "Lost"
	SegmentOther             Segment = "Other"
)

type digitRange struct {
	lo, hi int
}

func (d digitRange) contains(v int) bool {
	return v >= d.lo && v <= d.hi
}

type segmentRule struct {
	r, f, m digitRange
	segment Segment
}

func (s segmentRule) matches(r, f, m int) bool {
	return s.r.contains(r) && s.f.contains(f) && s.m.contains(m)
}

// Rules overlap (455 fits both Champions and Loyal Customers), so evaluation
// order decides the label.
var segmentRules = []segmentRule{
	{r: digitRange{4, 5}, f: digitRange{4, 5}, m: digitRange{4, 5}, segment: SegmentChampions},
	{r: digitRange{3, 5}, f: digitRange{3, 5}, m: digitRange{1, 3}, segment: SegmentLoyal},
	{r: digitRange{3, 4}, f: digitRange{1, 2}, m: digitRange{3, 5}, segment: SegmentPotentialLoyalist},
	{r: digitRange{5, 5}, f: digitRange{1, 2}, m: digitRange{1, 2}, segment: SegmentNew},
	{r: digitRange{1, 2}, f: digitRange{3, 5}, m: digitRange{3, 5}, segment: SegmentAtRisk},
	{r: digitRange{3, 4}, f: digitRange{1, 2}, m: digitRange{1, 2}, segment: SegmentNeedAttention},
	{r: digitRange{1, 2}, f: digitRange{1, 2}, m: digitRange{3, 5}, segment: SegmentHibernating},
	{r: digitRange{1, 2}, f: digitRange{1, 2}, m: digitRange{1, 2}, segment: SegmentLost},
}

// Segments lists every label in rule order, followed by SegmentOther.
func Segments() []Segment {
	list := make([]Segment, 0, len(segmentRules)+1)
	for _, r := range segmentRules {
		list = append(list, r.segment)
	}
	return append(list, SegmentOther)
}

// Classify returns the label of the first rule matching the scores.
func Classify(r, f, m int) Segment {
	for _, rule := range segmentRules {
		if rule.matches(r, f, m) {
			return rule.segment
		}
	}
	return SegmentOther
}

// ClassifyCode classifies a 3-digit score code such as "451".
// Anything that is not three digits falls into SegmentOther.
func ClassifyCode(code string) Segment {
	if len(code) != 3 {
		return SegmentOther
	}
	d := make([]int, 0, 3)
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return SegmentOther
		}
		d = append(d, int(c-'0'))
	}
	return Classify(d[0], d[1], d[2])
}

func segmentOrder(s Segment) int {
	for i, r := range segmentRules {
		if r.segment == s {
			return i
		}
	}
	return len(segmentRules)
}
