package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vipul43/yatco-sync/internal/models"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a string to a URL-friendly slug
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ListingSlug builds "{feet}-{builder}-{type}-{year}-{mls}". When any of
// length, builder, type or year is missing the slug is just the MLS id.
func ListingSlug(v models.Vessel) string {
	mls := v.MLSID
	if mls == "" {
		mls = strconv.FormatInt(v.VesselID, 10)
	}

	builder := Slugify(v.Builder)
	vesselType := Slugify(v.Type)
	if v.LengthFeet == nil || int(*v.LengthFeet) <= 0 || builder == "" || vesselType == "" || v.Year <= 0 {
		return mls
	}

	return strings.Join([]string{
		strconv.Itoa(int(*v.LengthFeet)),
		builder,
		vesselType,
		strconv.Itoa(v.Year),
		mls,
	}, "-")
}

// ListingURL joins the public listing base with the vessel slug
func ListingURL(base string, v models.Vessel) string {
	slug := ListingSlug(v)
	if base == "" {
		return slug
	}
	return strings.TrimRight(base, "/") + "/" + slug + "/"
}
