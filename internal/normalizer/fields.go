package normalizer

import "math"

// extractor reads one candidate source for a logical field
type extractor[T any] func(Document) (T, bool)

// first evaluates a chain of extractors and returns the first hit
func first[T any](doc Document, chain []extractor[T]) (T, bool) {
	for _, ex := range chain {
		if v, ok := ex(doc); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func text(path string) extractor[string] {
	return func(doc Document) (string, bool) {
		v, ok := doc.Lookup(path)
		if !ok {
			return "", false
		}
		return toString(v)
	}
}

func positive(path string) extractor[float64] {
	return func(doc Document) (float64, bool) {
		v, ok := doc.Lookup(path)
		if !ok {
			return 0, false
		}
		f, ok := toFloat(v)
		return f, ok && f > 0
	}
}

func positiveInt(path string) extractor[int] {
	return func(doc Document) (int, bool) {
		f, ok := positive(path)(doc)
		return int(f), ok && int(f) > 0
	}
}

// Field precedence, first match wins.
var (
	nameChain = []extractor[string]{
		text("BasicInfo.BoatName"),
		text("Result.BoatName"),
		text("Result.VesselName"),
		text("BasicInfo.VesselName"),
	}

	mlsIDChain = []extractor[string]{
		text("Result.MLSID"),
		text("BasicInfo.MLSID"),
		text("Result.MlsID"),
	}

	priceUSDChain = []extractor[float64]{
		positive("BasicInfo.AskingPriceUSD"),
		positive("BasicInfo.AskingPriceCompare"),
		positive("BasicInfo.AskingPrice"),
	}

	lengthFeetChain = []extractor[float64]{
		positive("BasicInfo.LOAFeet"),
		positive("Dimensions.LOAFeet"),
		positive("Result.LOAFeet"),
	}

	lengthMetersChain = []extractor[float64]{
		positive("BasicInfo.LOAMeters"),
		positive("Dimensions.LOAMeters"),
	}

	yearChain = []extractor[int]{
		positiveInt("BasicInfo.YearBuilt"),
		positiveInt("BasicInfo.ModelYear"),
		positiveInt("Result.YearBuilt"),
		positiveInt("Result.Year"),
	}

	builderChain     = []extractor[string]{text("BasicInfo.Builder"), text("Result.Builder")}
	modelChain       = []extractor[string]{text("BasicInfo.Model"), text("Result.Model")}
	categoryChain    = []extractor[string]{text("BasicInfo.MainCategory"), text("Result.MainCategory")}
	subCategoryChain = []extractor[string]{text("BasicInfo.SubCategory"), text("Result.SubCategory")}
	typeChain        = []extractor[string]{text("BasicInfo.VesselType"), text("Result.VesselType"), text("BasicInfo.Type")}
	conditionChain   = []extractor[string]{text("BasicInfo.Condition"), text("Result.Condition")}

	beamChain    = []extractor[float64]{positive("BasicInfo.BeamFeet"), positive("Dimensions.BeamFeet")}
	tonnageChain = []extractor[float64]{positive("BasicInfo.GrossTonnage"), positive("Dimensions.GrossTonnage")}

	stateRoomsChain = []extractor[int]{positiveInt("BasicInfo.StateRooms"), positiveInt("Accommodations.StateRooms")}
	headsChain      = []extractor[int]{positiveInt("BasicInfo.Heads"), positiveInt("Accommodations.Heads")}
	sleepsChain     = []extractor[int]{positiveInt("BasicInfo.Sleeps"), positiveInt("Accommodations.Sleeps")}
	berthsChain     = []extractor[int]{positiveInt("BasicInfo.Berths"), positiveInt("Accommodations.Berths")}

	builderDescriptionChain = []extractor[string]{
		text("BasicInfo.BuilderDescription"),
		text("Result.BuilderDescription"),
	}

	mainPhotoChain = []extractor[string]{text("BasicInfo.MainPhotoURL"), text("Result.MainPhotoURL")}

	statusChain        = []extractor[string]{text("BasicInfo.Status"), text("Result.Status")}
	agreementTypeChain = []extractor[string]{text("BasicInfo.AgreementType"), text("Result.AgreementType")}
	daysOnMarketChain  = []extractor[int]{positiveInt("BasicInfo.DaysOnMarket"), positiveInt("Result.DaysOnMarket")}
)

// priceEUR is only set when the listing is explicitly priced in euros
func priceEUR(doc Document) (float64, bool) {
	currency, _ := text("BasicInfo.Currency")(doc)
	if !equalFold(currency, "EUR") {
		return 0, false
	}
	return positive("BasicInfo.AskingPrice")(doc)
}

// lengthMeters prefers an explicit value and otherwise converts from feet.
// Feet are never derived from meters.
func lengthMeters(doc Document, feet float64, hasFeet bool) (float64, bool) {
	if m, ok := first(doc, lengthMetersChain); ok {
		return m, true
	}
	if !hasFeet {
		return 0, false
	}
	return math.Round(feet*metersPerFoot*100) / 100, true
}
