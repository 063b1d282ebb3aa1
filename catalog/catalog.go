// Package catalog holds the reference data the registration forms draw from:
// industry categories, states and districts, monitored parameter species,
// instrument protocols, and the geographic envelope for stack coordinates.
package catalog

import "slices"

// Categories lists the recognised industry categories.
var Categories = []string{
	"Aluminium", "Cement", "Chlor Alkali", "Copper", "Distillery",
	"Dye & Dye Intermediates", "Fertilizer", "Iron & Steel", "Oil Refinery",
	"Pesticides", "Petrochemical", "Pharmaceuticals", "Power Plant",
	"Pulp And Paper", "Sugar", "Tannery", "Zinc", "CETP", "STP",
	"Slaughter House", "Textile", "Food, Dairy & Beverages",
	"Common Hazardous Waste Treatment Facility",
	"Common Biomedical Waste Incinerators",
}

// States lists the states the portal currently covers.
var States = []string{"Bihar"}

// districts maps a state to its districts.
var districts = map[string][]string{
	"Bihar": {
		"Araria", "Arwal", "Aurangabad", "Banka", "Begusarai", "Bhagalpur",
		"Bhojpur", "Buxar", "Darbhanga", "Gaya", "Gopalganj", "Jamui",
		"Jehanabad", "Kaimur (Bhabua)", "Katihar", "Khagaria", "Kishanganj",
		"Lakhisarai", "Madhepura", "Madhubani", "Munger", "Muzaffarpur",
		"Nalanda", "Nawada", "Pashchim Champaran", "Patna", "Purbi Champaran",
		"Purnia", "Rohtas", "Saharsa", "Samastipur", "Saran", "Sheikhpura",
		"Sheohar", "Sitamarhi", "Siwan", "Supaul", "Vaishali",
	},
}

// Parameters lists the chemical species a CEMS can monitor.
var Parameters = []string{
	"PM", "SOx", "NOx", "CO", "O2", "NH3", "HCL",
	"Total Fluoride", "HF", "Hg", "H2S", "CL2",
}

// CommunicationProtocols lists the supported instrument data link types.
var CommunicationProtocols = []string{"4-20 mA", "RS-485", "RS-232"}

// MeasurementMethods lists how an instrument samples the gas stream.
var MeasurementMethods = []string{"In-situ", "Extractive"}

// ApproachMedia lists how a monitoring platform can be reached.
var ApproachMedia = []string{"Ladder", "Lift", "Staircase"}

// StackShapes lists the supported stack cross-sections.
var StackShapes = []string{"Circular", "Rectangular"}

// StackConditions lists the flue gas condition at the stack.
var StackConditions = []string{"Wet", "Dry"}

// CEMSPlacements lists where the CEMS is installed relative to the stack.
var CEMSPlacements = []string{"Stack", "Duct", "Both"}

// Geographic envelope for stack coordinates (covers Bihar).
const (
	LatMin = 24.33611111
	LatMax = 27.52083333
	LonMin = 83.33055556
	LonMax = 88.29444444
)

// ValidCategory reports whether c is a recognised industry category.
func ValidCategory(c string) bool { return slices.Contains(Categories, c) }

// ValidState reports whether s is a covered state.
func ValidState(s string) bool { return slices.Contains(States, s) }

// ValidDistrict reports whether d is a district of state s.
func ValidDistrict(s, d string) bool { return slices.Contains(districts[s], d) }

// Districts returns the districts of state s, or nil for an unknown state.
func Districts(s string) []string { return slices.Clone(districts[s]) }

// ValidParameter reports whether p is a monitorable species.
func ValidParameter(p string) bool { return slices.Contains(Parameters, p) }

// ValidProtocol reports whether p is a supported communication protocol.
func ValidProtocol(p string) bool { return slices.Contains(CommunicationProtocols, p) }

// ValidMeasurementMethod reports whether m is a supported sampling method.
func ValidMeasurementMethod(m string) bool { return slices.Contains(MeasurementMethods, m) }

// ValidApproachMedium reports whether m is a recognised platform approach.
func ValidApproachMedium(m string) bool { return slices.Contains(ApproachMedia, m) }

// ValidShape reports whether s is a supported stack shape.
func ValidShape(s string) bool { return slices.Contains(StackShapes, s) }

// ValidCondition reports whether c is a supported stack condition.
func ValidCondition(c string) bool { return slices.Contains(StackConditions, c) }

// ValidPlacement reports whether p is a supported CEMS placement.
func ValidPlacement(p string) bool { return slices.Contains(CEMSPlacements, p) }

// InEnvelope reports whether the coordinate pair falls inside the covered
// geographic envelope.
func InEnvelope(lat, lon float64) bool {
	return lat >= LatMin && lat <= LatMax && lon >= LonMin && lon <= LonMax
}
