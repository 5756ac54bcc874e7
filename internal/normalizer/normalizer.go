package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/vipul43/yatco-sync/internal/models"
	"gorm.io/datatypes"
)

const metersPerFoot = 0.3048

// Normalizer maps FullSpecsAll documents onto models.Vessel. It holds no
// state besides the public listing base URL.
type Normalizer struct {
	listingBaseURL string
}

// New creates a normalizer that builds listing URLs under listingBaseURL
func New(listingBaseURL string) *Normalizer {
	return &Normalizer{listingBaseURL: listingBaseURL}
}

// Normalize converts one document. Missing fields become zero values, a
// missing price stays nil. The same input always yields the same record.
func (n *Normalizer) Normalize(vesselID int64, doc Document) models.Vessel {
	v := models.Vessel{
		VesselID: vesselID,
		Active:   true,
	}

	v.MLSID, _ = first(doc, mlsIDChain)
	if v.MLSID == "" {
		v.MLSID = strconv.FormatInt(vesselID, 10)
	}
	v.Name, _ = first(doc, nameChain)
	v.Builder, _ = first(doc, builderChain)
	v.Model, _ = first(doc, modelChain)
	v.Category, _ = first(doc, categoryChain)
	v.SubCategory, _ = first(doc, subCategoryChain)
	v.Type, _ = first(doc, typeChain)
	v.Condition, _ = first(doc, conditionChain)
	v.Year, _ = first(doc, yearChain)

	v.PriceUSD = optional(first(doc, priceUSDChain))
	v.PriceEUR = optional(priceEUR(doc))
	feet, hasFeet := first(doc, lengthFeetChain)
	v.LengthFeet = optional(feet, hasFeet)
	v.LengthMeters = optional(lengthMeters(doc, feet, hasFeet))
	v.BeamFeet = optional(first(doc, beamChain))
	v.GrossTonnage = optional(first(doc, tonnageChain))

	applyEngines(&v, doc)

	v.StateRooms, _ = first(doc, stateRoomsChain)
	v.Heads, _ = first(doc, headsChain)
	v.Sleeps, _ = first(doc, sleepsChain)
	v.Berths, _ = first(doc, berthsChain)

	v.Description, v.DetailedSpecs = splitSections(doc)
	builderDesc, _ := first(doc, builderDescriptionChain)
	v.BuilderDescription = StripInlineStylesAndClasses(builderDesc)
	v.Summary = Excerpt(v.Description, summaryWords)

	gallery := imageURLs(doc)
	v.GalleryURLs = datatypes.JSONSlice[string](gallery)
	v.VideoURLs = datatypes.JSONSlice[string](videoURLs(doc))
	v.MainImageURL, _ = first(doc, mainPhotoChain)
	if v.MainImageURL == "" && len(gallery) > 0 {
		v.MainImageURL = gallery[0]
	}

	applyBroker(&v, doc)
	applyCompany(&v, doc)

	v.Status, _ = first(doc, statusChain)
	v.AgreementType, _ = first(doc, agreementTypeChain)
	v.DaysOnMarket, _ = first(doc, daysOnMarketChain)

	if raw, err := json.Marshal(doc); err == nil {
		v.Raw = datatypes.JSON(raw)
	}

	v.ListingURL = ListingURL(n.listingBaseURL, v)
	return v
}

func optional(f float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &f
}

// applyEngines takes make, model and fuel from the first engine. Total
// horsepower assumes every engine matches the first one.
func applyEngines(v *models.Vessel, doc Document) {
	var engines []map[string]any
	for _, item := range doc.List("Engines") {
		if obj, ok := asObject(item); ok {
			engines = append(engines, obj)
		}
	}
	v.EngineCount = len(engines)
	if len(engines) == 0 {
		return
	}

	e := engines[0]
	v.EngineMake, _ = field(e, "Manufacturer", "Make")
	v.EngineModel, _ = field(e, "Model")
	v.FuelType, _ = field(e, "FuelType", "Fuel")

	for _, key := range []string{"Horsepower", "HorsePower", "HP"} {
		if hp, ok := toFloat(e[key]); ok && hp > 0 {
			v.EngineHorsepower = hp
			break
		}
	}
	if v.EngineCount > 1 {
		v.EngineHorsepower *= float64(v.EngineCount)
	}
}

func imageURLs(doc Document) []string {
	urls := []string{}
	for _, item := range doc.List("PhotoGallery") {
		if s, ok := toString(item); ok {
			urls = append(urls, s)
			continue
		}
		if obj, ok := asObject(item); ok {
			if s, ok := field(obj, "LargeImageURL", "MediumImageURL", "ImageURL"); ok {
				urls = append(urls, s)
			}
		}
	}
	return urls
}

func videoURLs(doc Document) []string {
	urls := []string{}
	for _, item := range doc.List("Videos") {
		if s, ok := toString(item); ok {
			urls = append(urls, s)
			continue
		}
		if obj, ok := asObject(item); ok {
			if s, ok := field(obj, "VideoURL", "URL"); ok {
				urls = append(urls, s)
			}
		}
	}
	return urls
}

func personName(obj map[string]any) string {
	if name, ok := field(obj, "Name"); ok {
		return name
	}
	firstName, _ := field(obj, "FirstName")
	lastName, _ := field(obj, "LastName")
	return strings.TrimSpace(firstName + " " + lastName)
}

func applyBroker(v *models.Vessel, doc Document) {
	raw, _ := doc.Lookup("Broker")
	broker, ok := asObject(raw)
	if !ok {
		return
	}
	v.BrokerName = personName(broker)
	v.BrokerPhone, _ = field(broker, "Phone", "Mobile")
	v.BrokerEmail, _ = field(broker, "Email")
}

func applyCompany(v *models.Vessel, doc Document) {
	v.CompanyContacts = datatypes.JSONSlice[models.Contact]{}

	raw, _ := doc.Lookup("Company")
	company, ok := asObject(raw)
	if !ok {
		return
	}
	v.CompanyName, _ = field(company, "Name")

	var parts []string
	for _, key := range []string{"Address1", "Address2", "City", "State", "Zip", "Country"} {
		if s, ok := field(company, key); ok {
			parts = append(parts, s)
		}
	}
	v.CompanyAddress = strings.Join(parts, ", ")

	contacts, _ := company["Contacts"].([]any)
	for _, item := range contacts {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		c := models.Contact{Name: personName(obj)}
		c.Phone, _ = field(obj, "Phone", "Mobile")
		c.Email, _ = field(obj, "Email")
		if c.Name == "" && c.Phone == "" && c.Email == "" {
			continue
		}
		v.CompanyContacts = append(v.CompanyContacts, c)
	}
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
