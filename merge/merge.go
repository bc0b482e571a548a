// Package merge holds the pure decision and planning logic for combining two
// sorted integer sequences into one globally sorted output.
//
// The plan is picked once from the two range declarations. Disjoint ranges
// allow the whole output to be produced by concatenation, with zero element
// comparisons. Overlapping ranges fall back to a two-pointer merge over the
// local sequence and the partner values received so far.
package merge

// Range describes a sorted sequence by its bounds and length. An empty
// sequence has Count 0; its bounds carry no meaning.
type Range struct {
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
	Count int   `json:"count"`
}

// Relation classifies how the own range relates to the partner range.
type Relation int

const (
	// Overlapping ranges intersect and require element comparisons.
	Overlapping Relation = iota
	// DisjointBefore means every own value precedes every partner value.
	DisjointBefore
	// DisjointAfter means every partner value precedes every own value.
	DisjointAfter
)

// String implements fmt.Stringer.
func (r Relation) String() string {
	switch r {
	case Overlapping:
		return "overlapping"
	case DisjointBefore:
		return "disjoint-before"
	case DisjointAfter:
		return "disjoint-after"
	default:
		return "unknown"
	}
}

// Classify decides the merge plan for own versus partner. Empty sequences
// never require comparisons and classify as disjoint, with the empty side
// placed first.
func Classify(own, partner Range) Relation {
	switch {
	case own.Count == 0 || partner.Count == 0:
		return DisjointBefore
	case own.Max < partner.Min:
		return DisjointBefore
	case own.Min > partner.Max:
		return DisjointAfter
	default:
		return Overlapping
	}
}

// Cursor tracks the sink's progress through the two sequences.
type Cursor struct {
	// Own is the next unmerged index in the local sequence.
	Own int
	// Partner is the next unmerged index in the partner buffer.
	Partner int
}

// Step is one bounded emission planned by Next.
type Step struct {
	// Values are safe to append to the output now: no value that has not
	// yet arrived can precede any of them.
	Values []int64
	// Cursor is the progress after appending Values.
	Cursor Cursor
	// Comparisons is the number of element comparisons this step charged.
	// Concatenation plans and drains charge none; the two-pointer loop
	// charges one per partner value it places.
	Comparisons int
}

// Next plans the next output chunk of at most limit values. own is the full
// local sequence. partner is the prefix of the partner sequence received so
// far, final once partnerComplete is true. When no value is provably next in
// the global order yet, Next returns an empty step and the caller retries
// after more partner data has arrived.
func Next(rel Relation, cur Cursor, own, partner []int64, partnerComplete bool, limit int) Step {
	out := make([]int64, 0, limit)
	comparisons := 0

	switch rel {
	case DisjointBefore:
		for cur.Own < len(own) && len(out) < limit {
			out = append(out, own[cur.Own])
			cur.Own++
		}
		// The buffered partner prefix arrives in ascending order, so once
		// the own side is exhausted it can be emitted as it stands.
		if cur.Own == len(own) {
			for cur.Partner < len(partner) && len(out) < limit {
				out = append(out, partner[cur.Partner])
				cur.Partner++
			}
		}

	case DisjointAfter:
		for cur.Partner < len(partner) && len(out) < limit {
			out = append(out, partner[cur.Partner])
			cur.Partner++
		}
		// Own values may only follow the partner's very last value, which
		// is known to have arrived once the partner declares completion.
		if partnerComplete && cur.Partner == len(partner) {
			for cur.Own < len(own) && len(out) < limit {
				out = append(out, own[cur.Own])
				cur.Own++
			}
		}

	case Overlapping:
		for len(out) < limit {
			ownLeft := cur.Own < len(own)
			partnerLeft := cur.Partner < len(partner)
			switch {
			case ownLeft && partnerLeft:
				if own[cur.Own] <= partner[cur.Partner] {
					out = append(out, own[cur.Own])
					cur.Own++
				} else {
					out = append(out, partner[cur.Partner])
					cur.Partner++
					comparisons++
				}
			case !ownLeft && partnerLeft:
				// Own side exhausted: drain buffered partner values freely.
				out = append(out, partner[cur.Partner])
				cur.Partner++
			case ownLeft && partnerComplete:
				// Partner fully consumed: drain the own remainder freely.
				out = append(out, own[cur.Own])
				cur.Own++
			default:
				// Waiting on partner data that has not arrived yet.
				return Step{Values: out, Cursor: cur, Comparisons: comparisons}
			}
		}
	}

	return Step{Values: out, Cursor: cur, Comparisons: comparisons}
}
