// Package quality scores framework outputs against weighted criteria
// and turns the result into an accept/review/reject recommendation.
package quality

import (
	"fmt"
	"math"
)

// weightTolerance bounds floating point drift when checking that
// criterion weights sum to 1.
const weightTolerance = 1e-9

// Band is one rubric band mapping a score range to descriptive text.
type Band struct {
	// Min is the lowest score the band covers, inclusive.
	Min int `json:"min"`

	// Max is the highest score the band covers, inclusive.
	Max int `json:"max"`

	// Description tells an assessor what output in this band looks like.
	Description string `json:"description"`
}

// Criterion is a single weighted quality dimension with a four-band
// scoring rubric.
type Criterion struct {
	// ID is the stable criterion identifier.
	ID string `json:"id"`

	// Name is the human-readable criterion name.
	Name string `json:"name"`

	// Description explains what the criterion measures.
	Description string `json:"description"`

	// Weight is the criterion's share of the overall score, 0..1.
	// Weights across a module's criteria must sum to 1.
	Weight float64 `json:"weight"`

	// Rubric is the four scoring bands covering 1-10.
	Rubric []Band `json:"rubric"`

	// RedFlags are symptoms that indicate the criterion is failing.
	RedFlags []string `json:"redFlags,omitempty"`
}

// ValidateWeights checks that criterion weights sum to 1 within
// floating point tolerance and that every weight is in (0, 1].
func ValidateWeights(criteria []Criterion) error {
	if len(criteria) == 0 {
		return fmt.Errorf("no criteria defined")
	}

	sum := 0.0
	for _, c := range criteria {
		if c.Weight <= 0 || c.Weight > 1 {
			return fmt.Errorf("criterion %s has weight %v, must be in (0, 1]", c.ID, c.Weight)
		}
		sum += c.Weight
	}

	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("criterion weights sum to %v, must sum to 1", sum)
	}

	return nil
}

// standardRubric builds the common four-band rubric from per-band text.
func standardRubric(poor, weak, good, excellent string) []Band {
	return []Band{
		{Min: 1, Max: 3, Description: poor},
		{Min: 4, Max: 6, Description: weak},
		{Min: 7, Max: 8, Description: good},
		{Min: 9, Max: 10, Description: excellent},
	}
}

// withCriterion appends a framework-specific criterion to the
// universal set, scaling the universal weights down so the total still
// sums to 1.
func withCriterion(extra Criterion) []Criterion {
	base := UniversalCriteria()
	for i := range base {
		base[i].Weight *= 1 - extra.Weight
	}
	return append(base, extra)
}

// FrameworkCriteria returns the criteria set for a framework: the
// universal criteria plus the framework's own dimension, re-weighted.
// Unknown ids get the universal set unchanged.
func FrameworkCriteria(frameworkID string) []Criterion {
	switch frameworkID {
	case "five_whys":
		return withCriterion(Criterion{
			ID:          "causal_depth",
			Name:        "Causal Depth",
			Description: "Why-chains reach systemic causes rather than stopping at symptoms",
			Weight:      0.15,
			Rubric: standardRubric(
				"Chains stop at the first restatement of the problem",
				"Chains of two or three links that end at proximate causes",
				"Chains reach process or incentive level causes",
				"Chains bottom out at systemic causes a team could change",
			),
			RedFlags: []string{
				"a root cause that merely rephrases the problem statement",
			},
		})
	case "pestle":
		return withCriterion(Criterion{
			ID:          "category_coverage",
			Name:        "Category Coverage",
			Description: "Factors span the six macro categories where the business is actually exposed",
			Weight:      0.15,
			Rubric: standardRubric(
				"Factors cluster in one or two categories",
				"Three or four categories touched, the rest ignored without comment",
				"All material categories covered or their absence explained",
				"Every category assessed with explicit exposure reasoning",
			),
			RedFlags: []string{
				"an empty category with no note on why it does not apply",
			},
		})
	case "five_forces":
		return withCriterion(Criterion{
			ID:          "structural_grounding",
			Name:        "Structural Grounding",
			Description: "Intensity ratings follow from named structural drivers, not vibes",
			Weight:      0.15,
			Rubric: standardRubric(
				"Ratings with no drivers or contradicting their drivers",
				"Drivers listed but disconnected from the assigned intensity",
				"Each rating traceable to its drivers",
				"Ratings argued from drivers with counter-evidence weighed",
			),
			RedFlags: []string{
				"a high intensity rating carried by a single generic driver",
			},
		})
	case "swot":
		return withCriterion(Criterion{
			ID:          "internal_external_split",
			Name:        "Internal/External Split",
			Description: "Strengths and weaknesses are internal facts; opportunities and threats are external conditions",
			Weight:      0.15,
			Rubric: standardRubric(
				"Quadrants freely mix internal and external items",
				"Occasional misplacement between quadrants",
				"Clean split with upstream factors cited on external items",
				"Clean split plus explicit pairing of internal items against external ones",
			),
			RedFlags: []string{
				"an external market condition listed as a strength",
			},
		})
	case "bmc":
		return withCriterion(Criterion{
			ID:          "block_coherence",
			Name:        "Block Coherence",
			Description: "The nine blocks describe one business model, not nine disconnected lists",
			Weight:      0.15,
			Rubric: standardRubric(
				"Blocks contradict each other on segment, channel, or cost",
				"Blocks individually plausible but never cross-referenced",
				"Value propositions, segments, and revenue visibly aligned",
				"Every block traceable to the value propositions it serves",
			),
			RedFlags: []string{
				"a revenue stream no customer segment would pay for",
			},
		})
	default:
		return UniversalCriteria()
	}
}

// UniversalCriteria returns the default criteria set applied to every
// framework output unless a module overrides it.
func UniversalCriteria() []Criterion {
	return []Criterion{
		{
			ID:          "specificity",
			Name:        "Specificity",
			Description: "Statements are concrete and tied to this business, not generic boilerplate",
			Weight:      0.25,
			Rubric: standardRubric(
				"Generic statements that could apply to any business",
				"Some specifics but mostly interchangeable observations",
				"Concrete, business-specific statements with clear referents",
				"Sharp, falsifiable statements grounded in this business's particulars",
			),
			RedFlags: []string{
				"statements with no named product, segment, or competitor",
				"advice copied verbatim from framework definitions",
			},
		},
		{
			ID:          "evidence",
			Name:        "Evidence",
			Description: "Claims are backed by citations or explicit reasoning chains",
			Weight:      0.20,
			Rubric: standardRubric(
				"Unsupported assertions throughout",
				"Occasional citations, most claims unbacked",
				"Most claims carry citations or reasoning",
				"Every material claim is backed and traceable",
			),
			RedFlags: []string{
				"zero citations on externally verifiable claims",
				"citations that do not support the attached statement",
			},
		},
		{
			ID:          "actionability",
			Name:        "Actionability",
			Description: "Findings translate into decisions or next steps a team could act on",
			Weight:      0.25,
			Rubric: standardRubric(
				"Observations with no implied action",
				"Vague directions without owners or sequencing",
				"Clear implications with plausible next steps",
				"Prioritized, concrete moves a team could start this week",
			),
			RedFlags: []string{
				"recommendations phrased as restated problems",
			},
		},
		{
			ID:          "consistency",
			Name:        "Consistency",
			Description: "The output does not contradict itself or upstream findings",
			Weight:      0.15,
			Rubric: standardRubric(
				"Internal contradictions or conflicts with upstream analysis",
				"Minor tensions left unacknowledged",
				"Coherent internally and with upstream findings",
				"Explicitly reconciles tensions across frameworks",
			),
			RedFlags: []string{
				"a strength and a weakness asserting opposite facts",
				"ignores enrichment passed from the previous framework",
			},
		},
		{
			ID:          "completeness",
			Name:        "Completeness",
			Description: "All required sections are populated with substantive content",
			Weight:      0.15,
			Rubric: standardRubric(
				"Required sections missing or token entries only",
				"All sections present but several are thin",
				"Full coverage with adequate depth",
				"Exhaustive coverage including non-obvious angles",
			),
			RedFlags: []string{
				"single-entry sections where the rubric expects breadth",
			},
		},
	}
}
