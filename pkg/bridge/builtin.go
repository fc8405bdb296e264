package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/strategos-io/strategos/pkg/schema"
)

// Builtins returns the bridges connecting the built-in frameworks.
func Builtins() []*Contract {
	return []*Contract{
		fiveWhysToPestle(),
		pestleToFiveForces(),
		fiveForcesToSwot(),
		swotToBmc(),
	}
}

// BuiltinRegistry builds a registry holding the built-in bridges.
func BuiltinRegistry() (*Registry, error) {
	return NewRegistry(Builtins()...)
}

// themeConfidence is the minimum root-cause confidence for a cause to
// become a scan theme downstream.
const themeConfidence = 0.4

func fiveWhysToPestle() *Contract {
	return &Contract{
		From:        "five_whys",
		To:          "pestle",
		Description: "Turns diagnosed root causes into themes the macro-environment scan must probe",
		Rules: []InterpretationRule{
			{
				ID:          "cause-to-theme",
				Description: "Each root cause above the confidence floor becomes a scan theme, so the macro scan looks for external forces feeding the diagnosed cause",
				Example:     "Root cause 'setup requires engineering time trials do not get' becomes the theme 'self-serve expectations in the buying process'",
			},
			{
				ID:          "chain-context",
				Description: "The restated problem anchors the scan so factors are judged by their effect on the diagnosed problem, not in the abstract",
				Example:     "With the problem restated as an activation failure, a data-residency trend is read as an activation barrier rather than a generic compliance note",
			},
		},
		Transform: func(_ context.Context, fromOutput, toInput json.RawMessage) (json.RawMessage, error) {
			var out schema.FiveWhysOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return nil, fmt.Errorf("decode five_whys output: %w", err)
			}
			var in schema.PestleInput
			if err := json.Unmarshal(toInput, &in); err != nil {
				return nil, fmt.Errorf("decode pestle input: %w", err)
			}

			for _, rc := range out.RootCauses {
				if rc.Confidence >= themeConfidence {
					in.RootCauseThemes = append(in.RootCauseThemes, rc.Statement)
				}
			}

			return json.Marshal(in)
		},
		ValidateSource: func(fromOutput json.RawMessage) error {
			var out schema.FiveWhysOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return fmt.Errorf("decode five_whys output: %w", err)
			}
			if len(out.RootCauses) == 0 {
				return fmt.Errorf("no root causes to interpret")
			}
			return nil
		},
		ValidateTransformation: func(fromOutput, enriched json.RawMessage) error {
			var out schema.FiveWhysOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return err
			}
			var in schema.PestleInput
			if err := json.Unmarshal(enriched, &in); err != nil {
				return err
			}

			statements := make(map[string]bool, len(out.RootCauses))
			for _, rc := range out.RootCauses {
				statements[rc.Statement] = true
			}
			for _, theme := range in.RootCauseThemes {
				if !statements[theme] {
					return fmt.Errorf("theme %q cites no diagnosed root cause", theme)
				}
			}
			return nil
		},
	}
}

// forceForCategory maps a macro factor category to the competitive
// force it most directly informs.
func forceForCategory(cat schema.TrendCategory) string {
	switch cat {
	case schema.TrendPolitical, schema.TrendLegal:
		return "threat_of_new_entry"
	case schema.TrendEconomic:
		return "buyer_power"
	case schema.TrendSocial:
		return "threat_of_substitution"
	case schema.TrendTechnological:
		return "competitive_rivalry"
	case schema.TrendEnvironmental:
		return "supplier_power"
	default:
		return "competitive_rivalry"
	}
}

func pestleToFiveForces() *Contract {
	return &Contract{
		From:        "pestle",
		To:          "five_forces",
		Description: "Reads macro factors as structural signals about specific competitive forces",
		Rules: []InterpretationRule{
			{
				ID:          "regulation-as-barrier",
				Description: "Political and legal factors are interpreted as entry-barrier signals: regulation raises or lowers the cost of entering",
				Example:     "A data-residency enforcement trend becomes an entry signal on threat_of_new_entry, raising the barrier for vendors without regional hosting",
			},
			{
				ID:          "technology-as-rivalry",
				Description: "Technological shifts are interpreted as rivalry signals: a platform shift resets the basis of competition",
				Example:     "The warehouse-native shift becomes a rivalry signal because every incumbent must re-platform or cede ground",
			},
			{
				ID:          "severity-carries",
				Description: "Only medium and high severity factors become signals, and the severity carries through unchanged",
				Example:     "A low-severity social trend produces no signal; a high-severity economic trend produces a high-severity buyer_power signal",
			},
		},
		Transform: func(_ context.Context, fromOutput, toInput json.RawMessage) (json.RawMessage, error) {
			var out schema.PestleOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return nil, fmt.Errorf("decode pestle output: %w", err)
			}
			var in schema.FiveForcesInput
			if err := json.Unmarshal(toInput, &in); err != nil {
				return nil, fmt.Errorf("decode five_forces input: %w", err)
			}

			for _, f := range out.Factors {
				if f.Severity == schema.SeverityLow {
					continue
				}
				in.EntrySignals = append(in.EntrySignals, schema.EntrySignal{
					SourceFactorID: f.ID,
					Force:          forceForCategory(f.Category),
					Rationale:      fmt.Sprintf("%s factor %q bears on this force", f.Category, f.Title),
					Severity:       f.Severity,
				})
			}

			return json.Marshal(in)
		},
		ValidateSource: func(fromOutput json.RawMessage) error {
			var out schema.PestleOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return fmt.Errorf("decode pestle output: %w", err)
			}
			if len(out.Factors) == 0 {
				return fmt.Errorf("no macro factors to interpret")
			}
			return nil
		},
		ValidateTransformation: func(fromOutput, enriched json.RawMessage) error {
			var out schema.PestleOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return err
			}
			var in schema.FiveForcesInput
			if err := json.Unmarshal(enriched, &in); err != nil {
				return err
			}

			factorIDs := make(map[string]bool, len(out.Factors))
			for _, f := range out.Factors {
				factorIDs[f.ID] = true
			}
			for _, sig := range in.EntrySignals {
				if !factorIDs[sig.SourceFactorID] {
					return fmt.Errorf("entry signal references unknown factor %s", sig.SourceFactorID)
				}
				if sig.Severity == schema.SeverityLow {
					return fmt.Errorf("low-severity factor %s leaked into the signals", sig.SourceFactorID)
				}
			}
			return nil
		},
	}
}

// pressureIntensity is the minimum force intensity that registers as a
// competitive pressure downstream.
const pressureIntensity = 6

func fiveForcesToSwot() *Contract {
	return &Contract{
		From:        "five_forces",
		To:          "swot",
		Description: "Reframes strong competitive forces as exposure the SWOT synthesis must account for",
		Rules: []InterpretationRule{
			{
				ID:          "force-to-exposure",
				Description: "Each force at or above the intensity floor becomes a pressure stating what the force means for this business, not a restatement of the force",
				Example:     "Buyer power at 7 becomes the exposure 'trial users can walk away costlessly, so weaknesses in activation convert directly to churn'",
			},
			{
				ID:          "intensity-to-severity",
				Description: "Intensity bands map to severity: 8-10 high, 6-7 medium; weaker forces produce no pressure",
				Example:     "Rivalry at 8 arrives as a high-severity pressure; supplier power at 3 never reaches the synthesis",
			},
		},
		Transform: func(_ context.Context, fromOutput, toInput json.RawMessage) (json.RawMessage, error) {
			var out schema.FiveForcesOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return nil, fmt.Errorf("decode five_forces output: %w", err)
			}
			var in schema.SwotInput
			if err := json.Unmarshal(toInput, &in); err != nil {
				return nil, fmt.Errorf("decode swot input: %w", err)
			}

			forces := []struct {
				name  string
				force schema.Force
			}{
				{"supplier_power", out.SupplierPower},
				{"buyer_power", out.BuyerPower},
				{"competitive_rivalry", out.CompetitiveRivalry},
				{"threat_of_substitution", out.ThreatOfSubstitution},
				{"threat_of_new_entry", out.ThreatOfNewEntry},
			}

			for _, f := range forces {
				if f.force.Intensity < pressureIntensity {
					continue
				}
				severity := schema.SeverityMedium
				if f.force.Intensity >= 8 {
					severity = schema.SeverityHigh
				}
				exposure := fmt.Sprintf("%s at intensity %d", f.name, f.force.Intensity)
				if len(f.force.Drivers) > 0 {
					exposure = fmt.Sprintf("%s, driven by %s", exposure, f.force.Drivers[0])
				}
				in.CompetitivePressures = append(in.CompetitivePressures, schema.CompetitivePressure{
					SourceForce: f.name,
					Exposure:    exposure,
					Severity:    severity,
				})
			}

			return json.Marshal(in)
		},
		ValidateSource: func(fromOutput json.RawMessage) error {
			var out schema.FiveForcesOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return fmt.Errorf("decode five_forces output: %w", err)
			}
			for _, force := range []schema.Force{
				out.SupplierPower, out.BuyerPower, out.CompetitiveRivalry,
				out.ThreatOfSubstitution, out.ThreatOfNewEntry,
			} {
				if force.Intensity < 1 || force.Intensity > 10 {
					return fmt.Errorf("force intensity %d out of range 1-10", force.Intensity)
				}
			}
			return nil
		},
		ValidateTransformation: func(_, enriched json.RawMessage) error {
			var in schema.SwotInput
			if err := json.Unmarshal(enriched, &in); err != nil {
				return err
			}

			known := map[string]bool{
				"supplier_power": true, "buyer_power": true, "competitive_rivalry": true,
				"threat_of_substitution": true, "threat_of_new_entry": true,
			}
			for _, p := range in.CompetitivePressures {
				if !known[p.SourceForce] {
					return fmt.Errorf("pressure cites unknown force %q", p.SourceForce)
				}
			}
			return nil
		},
	}
}

// blockForQuadrant maps a SWOT quadrant to the canvas block its
// factors constrain most directly.
func blockForQuadrant(quadrant string) string {
	switch quadrant {
	case "strength":
		return "keyResources"
	case "weakness":
		return "keyActivities"
	case "opportunity":
		return "valuePropositions"
	case "threat":
		return "revenueStreams"
	default:
		return "valuePropositions"
	}
}

func swotToBmc() *Contract {
	return &Contract{
		From:        "swot",
		To:          "bmc",
		Description: "Converts high-impact SWOT factors into constraints on business model design",
		Rules: []InterpretationRule{
			{
				ID:          "strength-anchors-resources",
				Description: "High-impact strengths constrain key resources: the model must be built around what the business is demonstrably good at",
				Example:     "The strength 'deepest CRM integration coverage' becomes the constraint 'keyResources must preserve and extend the integration catalog'",
			},
			{
				ID:          "weakness-bounds-activities",
				Description: "High-impact weaknesses constrain key activities: the model must not depend on capabilities the business lacks",
				Example:     "The weakness 'engineering-assisted data setup' becomes the constraint 'keyActivities must not assume hands-on onboarding at scale'",
			},
			{
				ID:          "threat-pressures-revenue",
				Description: "High-impact threats constrain revenue design: pricing must survive the threat materializing",
				Example:     "The threat 'platform vendor ships a native alternative' becomes the constraint 'revenueStreams must not depend on features the platform can commoditize'",
			},
		},
		Transform: func(_ context.Context, fromOutput, toInput json.RawMessage) (json.RawMessage, error) {
			var out schema.SwotOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return nil, fmt.Errorf("decode swot output: %w", err)
			}
			var in schema.BmcInput
			if err := json.Unmarshal(toInput, &in); err != nil {
				return nil, fmt.Errorf("decode bmc input: %w", err)
			}

			for _, f := range out.Strengths {
				if f.Impact == schema.SeverityHigh {
					in.DesignConstraints = append(in.DesignConstraints, schema.DesignConstraint{
						SourceFactorID: f.ID,
						Block:          blockForQuadrant("strength"),
						Constraint:     fmt.Sprintf("design around the strength: %s", f.Statement),
					})
				}
			}
			for _, f := range out.Weaknesses {
				if f.Impact == schema.SeverityHigh {
					in.DesignConstraints = append(in.DesignConstraints, schema.DesignConstraint{
						SourceFactorID: f.ID,
						Block:          blockForQuadrant("weakness"),
						Constraint:     fmt.Sprintf("do not depend on the missing capability: %s", f.Statement),
					})
				}
			}
			for _, f := range out.Opportunities {
				if f.Impact == schema.SeverityHigh {
					in.DesignConstraints = append(in.DesignConstraints, schema.DesignConstraint{
						SourceFactorID: f.ID,
						Block:          blockForQuadrant("opportunity"),
						Constraint:     fmt.Sprintf("the value proposition should capture: %s", f.Statement),
					})
				}
			}
			for _, f := range out.Threats {
				if f.Impact == schema.SeverityHigh {
					in.DesignConstraints = append(in.DesignConstraints, schema.DesignConstraint{
						SourceFactorID: f.ID,
						Block:          blockForQuadrant("threat"),
						Constraint:     fmt.Sprintf("revenue design must survive: %s", f.Statement),
					})
				}
			}

			return json.Marshal(in)
		},
		ValidateSource: func(fromOutput json.RawMessage) error {
			var out schema.SwotOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return fmt.Errorf("decode swot output: %w", err)
			}
			total := len(out.Strengths) + len(out.Weaknesses) + len(out.Opportunities) + len(out.Threats)
			if total == 0 {
				return fmt.Errorf("empty synthesis, nothing to constrain the model with")
			}
			return nil
		},
		ValidateTransformation: func(fromOutput, enriched json.RawMessage) error {
			var out schema.SwotOutput
			if err := json.Unmarshal(fromOutput, &out); err != nil {
				return err
			}
			var in schema.BmcInput
			if err := json.Unmarshal(enriched, &in); err != nil {
				return err
			}

			factorIDs := make(map[string]bool)
			for _, f := range out.Strengths {
				factorIDs[f.ID] = true
			}
			for _, f := range out.Weaknesses {
				factorIDs[f.ID] = true
			}
			for _, f := range out.Opportunities {
				factorIDs[f.ID] = true
			}
			for _, f := range out.Threats {
				factorIDs[f.ID] = true
			}
			for _, dc := range in.DesignConstraints {
				if !factorIDs[dc.SourceFactorID] {
					return fmt.Errorf("design constraint cites unknown factor %s", dc.SourceFactorID)
				}
			}
			return nil
		},
	}
}
