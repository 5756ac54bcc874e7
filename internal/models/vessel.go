package models

import (
	"time"

	"gorm.io/datatypes"
)

// Contact is one company contact listed on a vessel
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Vessel is the normalized representation of one YATCO listing.
// Every sync overwrites all fields of the matched row; nothing is merged.
type Vessel struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"-"`
	VesselID int64  `gorm:"column:vessel_id;uniqueIndex" json:"vessel_id"`
	MLSID    string `gorm:"column:mls_id;index" json:"mls_id"`

	Name        string `gorm:"column:name" json:"name"`
	Builder     string `gorm:"column:builder;index" json:"builder,omitempty"`
	Model       string `gorm:"column:model" json:"model,omitempty"`
	Category    string `gorm:"column:category" json:"category,omitempty"`
	SubCategory string `gorm:"column:sub_category" json:"sub_category,omitempty"`
	Type        string `gorm:"column:vessel_type" json:"type,omitempty"`
	Condition   string `gorm:"column:condition" json:"condition,omitempty"`
	Year        int    `gorm:"column:year" json:"year,omitempty"`

	// nil price means "price on application"
	PriceUSD     *float64 `gorm:"column:price_usd" json:"price_usd"`
	PriceEUR     *float64 `gorm:"column:price_eur" json:"price_eur"`
	LengthFeet   *float64 `gorm:"column:length_feet" json:"length_feet"`
	LengthMeters *float64 `gorm:"column:length_meters" json:"length_meters"`
	BeamFeet     *float64 `gorm:"column:beam_feet" json:"beam_feet,omitempty"`
	GrossTonnage *float64 `gorm:"column:gross_tonnage" json:"gross_tonnage,omitempty"`

	EngineCount      int     `gorm:"column:engine_count" json:"engine_count"`
	EngineHorsepower float64 `gorm:"column:engine_horsepower" json:"engine_horsepower"`
	EngineMake       string  `gorm:"column:engine_make" json:"engine_make,omitempty"`
	EngineModel      string  `gorm:"column:engine_model" json:"engine_model,omitempty"`
	FuelType         string  `gorm:"column:fuel_type" json:"fuel_type,omitempty"`

	StateRooms int `gorm:"column:state_rooms" json:"state_rooms"`
	Heads      int `gorm:"column:heads" json:"heads"`
	Sleeps     int `gorm:"column:sleeps" json:"sleeps"`
	Berths     int `gorm:"column:berths" json:"berths"`

	Description        string `gorm:"column:description" json:"description,omitempty"`
	DetailedSpecs      string `gorm:"column:detailed_specs" json:"detailed_specs,omitempty"`
	BuilderDescription string `gorm:"column:builder_description" json:"builder_description,omitempty"`
	Summary            string `gorm:"column:summary" json:"summary,omitempty"`

	MainImageURL string                      `gorm:"column:main_image_url" json:"main_image_url,omitempty"`
	GalleryURLs  datatypes.JSONSlice[string] `gorm:"column:gallery_urls;type:jsonb" json:"gallery_urls"`
	VideoURLs    datatypes.JSONSlice[string] `gorm:"column:video_urls;type:jsonb" json:"video_urls"`
	ListingURL   string                      `gorm:"column:listing_url" json:"listing_url"`

	BrokerName      string                       `gorm:"column:broker_name" json:"broker_name,omitempty"`
	BrokerPhone     string                       `gorm:"column:broker_phone" json:"broker_phone,omitempty"`
	BrokerEmail     string                       `gorm:"column:broker_email" json:"broker_email,omitempty"`
	CompanyName     string                       `gorm:"column:company_name" json:"company_name,omitempty"`
	CompanyAddress  string                       `gorm:"column:company_address" json:"company_address,omitempty"`
	CompanyContacts datatypes.JSONSlice[Contact] `gorm:"column:company_contacts;type:jsonb" json:"company_contacts"`

	Status        string `gorm:"column:status" json:"status,omitempty"`
	AgreementType string `gorm:"column:agreement_type" json:"agreement_type,omitempty"`
	DaysOnMarket  int    `gorm:"column:days_on_market" json:"days_on_market"`

	// Raw keeps the upstream document for fields we do not map yet
	Raw datatypes.JSON `gorm:"column:raw;type:jsonb" json:"raw,omitempty"`

	Active       bool      `gorm:"column:active;default:true" json:"active"`
	LastSyncedAt time.Time `gorm:"column:last_synced_at" json:"last_synced_at"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

// TableName specifies the table name for GORM
func (Vessel) TableName() string {
	return "vessel"
}
