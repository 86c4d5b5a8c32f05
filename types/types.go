package types

// GeoPoint is a geographic coordinate pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Panorama holds one panorama record returned by the image-geolocation
// service. Year and Month are capture-date metadata and are only present
// when the provider reports them.
type Panorama struct {
	Panoid string  `json:"panoid"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Year   *int    `json:"year,omitempty"`
	Month  *int    `json:"month,omitempty"`
}

// Point returns the panorama's own coordinates as a GeoPoint.
func (p Panorama) Point() GeoPoint {
	return GeoPoint{Lat: p.Lat, Lon: p.Lon}
}

// Dated reports whether the panorama carries a capture year.
func (p Panorama) Dated() bool {
	return p.Year != nil
}
