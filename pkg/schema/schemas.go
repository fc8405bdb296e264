package schema

// sharedDefs are the CUE definitions common to every framework schema.
const sharedDefs = `
#Severity: "low" | "medium" | "high"

#TrendCategory: "political" | "economic" | "social" | "technological" | "legal" | "environmental"

#BusinessContext: {
	name:        string & !=""
	type:        string & !=""
	scale:       string & !=""
	description: string & !=""
	industry?:   string
	keywords?: [...string]
}

#Citation: {
	id:          string & !=""
	title:       string & !=""
	url?:        string
	source:      string & !=""
	snippet?:    string
	retrievedAt: string
}

#Evidence: {
	frameworkId: string & !=""
	statement:   string & !=""
	citations?: [...#Citation]
}
`

const fiveWhysInputSchema = sharedDefs + `
businessContext:  #BusinessContext
problemStatement: string & !=""
research?: [...#Citation]
`

const fiveWhysOutputSchema = sharedDefs + `
#RootCause: {
	id:        string & !=""
	statement: string & !=""
	whyChain: [string, ...string]
	depth:      int & >=1 & <=7
	confidence: number & >=0 & <=1
	evidence?: [...#Evidence]
}

problemRestatement: string & !=""
rootCauses: [#RootCause, ...#RootCause]
summary: string & !=""
`

const pestleInputSchema = sharedDefs + `
businessContext: #BusinessContext
focusAreas?: [...#TrendCategory]
rootCauseThemes?: [...string]
research?: [...#Citation]
`

const pestleOutputSchema = sharedDefs + `
#TrendFactor: {
	id:                string & !=""
	category:          #TrendCategory
	title:             string & !=""
	description:       string & !=""
	severity:          #Severity
	direction:         "improving" | "stable" | "worsening"
	timeHorizonMonths: int & >=1 & <=120
	evidence?: [...#Evidence]
}

factors: [#TrendFactor, ...#TrendFactor]
summary: string & !=""
`

const fiveForcesInputSchema = sharedDefs + `
#EntrySignal: {
	sourceFactorId: string & !=""
	force:          string & !=""
	rationale:      string & !=""
	severity:       #Severity
}

businessContext: #BusinessContext
entrySignals?: [...#EntrySignal]
research?: [...#Citation]
`

const fiveForcesOutputSchema = sharedDefs + `
#Force: {
	intensity: int & >=1 & <=10
	drivers: [string, ...string]
	evidence?: [...#Evidence]
}

supplierPower:         #Force
buyerPower:            #Force
competitiveRivalry:    #Force
threatOfSubstitution:  #Force
threatOfNewEntry:      #Force
overallAttractiveness: int & >=1 & <=10
summary:               string & !=""
`

const swotInputSchema = sharedDefs + `
#CompetitivePressure: {
	sourceForce: string & !=""
	exposure:    string & !=""
	severity:    #Severity
}

businessContext: #BusinessContext
competitivePressures?: [...#CompetitivePressure]
research?: [...#Citation]
`

const swotOutputSchema = sharedDefs + `
#InternalFactor: {
	id:        string & !=""
	statement: string & !=""
	impact:    #Severity
	evidence?: [...#Evidence]
}

#ExternalFactor: {
	id:        string & !=""
	statement: string & !=""
	sourceFactors?: [...string]
	likelihood: #Severity
	impact:     #Severity
	evidence?: [...#Evidence]
}

strengths: [#InternalFactor, ...#InternalFactor]
weaknesses: [#InternalFactor, ...#InternalFactor]
opportunities: [#ExternalFactor, ...#ExternalFactor]
threats: [#ExternalFactor, ...#ExternalFactor]
synthesis: string & !=""
`

const bmcInputSchema = sharedDefs + `
#DesignConstraint: {
	sourceFactorId: string & !=""
	block:          string & !=""
	constraint:     string & !=""
}

businessContext: #BusinessContext
designConstraints?: [...#DesignConstraint]
research?: [...#Citation]
`

const bmcOutputSchema = sharedDefs + `
#CanvasEntry: {
	id:         string & !=""
	statement:  string & !=""
	confidence: number & >=0 & <=1
	linkedInsights?: [...string]
}

customerSegments: [#CanvasEntry, ...#CanvasEntry]
valuePropositions: [#CanvasEntry, ...#CanvasEntry]
channels: [#CanvasEntry, ...#CanvasEntry]
customerRelationships: [#CanvasEntry, ...#CanvasEntry]
revenueStreams: [#CanvasEntry, ...#CanvasEntry]
keyResources: [#CanvasEntry, ...#CanvasEntry]
keyActivities: [#CanvasEntry, ...#CanvasEntry]
keyPartnerships: [#CanvasEntry, ...#CanvasEntry]
costStructure: [#CanvasEntry, ...#CanvasEntry]
coherenceNotes?: [...string]
summary: string & !=""
`

// builtinSchemas maps schema names to their CUE sources. Frameworks
// reference these names in their contracts.
func builtinSchemas() map[string]string {
	return map[string]string{
		"five_whys.input":   fiveWhysInputSchema,
		"five_whys.output":  fiveWhysOutputSchema,
		"pestle.input":      pestleInputSchema,
		"pestle.output":     pestleOutputSchema,
		"five_forces.input": fiveForcesInputSchema,
		"five_forces.output": fiveForcesOutputSchema,
		"swot.input":        swotInputSchema,
		"swot.output":       swotOutputSchema,
		"bmc.input":         bmcInputSchema,
		"bmc.output":        bmcOutputSchema,
	}
}
