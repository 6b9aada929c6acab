// Package cities translates Korean city names into queries the weather provider understands.
package cities

// koreanCities maps the Korean names offered in the search placeholder to provider queries.
var koreanCities = map[string]string{
	"서울":  "Seoul, South Korea",
	"부산":  "Busan, South Korea",
	"인천":  "Incheon, South Korea",
	"대구":  "Daegu, South Korea",
	"대전":  "Daejeon, South Korea",
	"광주":  "Gwangju, South Korea",
	"수원":  "Suwon, South Korea",
	"울산":  "Ulsan, South Korea",
	"창원":  "Changwon, South Korea",
	"고양":  "Goyang, South Korea",
	"용인":  "Yongin, South Korea",
	"성남":  "Seongnam, South Korea",
	"제주":  "Jeju City, South Korea",
	"청주":  "Cheongju, South Korea",
	"안산":  "Ansan, South Korea",
	"전주":  "Jeonju, South Korea",
	"천안":  "Cheonan, South Korea",
	"안양":  "Anyang, South Korea",
	"남양주": "Namyangju, South Korea",
	"평택":  "Pyeongtaek, South Korea",
}

// Resolve returns the provider query for name. Only exact matches are translated;
// anything else is returned unchanged and the provider decides whether it is valid.
func Resolve(name string) string {
	if q, ok := koreanCities[name]; ok {
		return q
	}
	return name
}

// Known reports whether name has a translation.
func Known(name string) bool {
	_, ok := koreanCities[name]
	return ok
}
