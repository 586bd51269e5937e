package locations

// Country is a static gazetteer entry.
type Country struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	NameEn string `json:"nameEn"`
}

// City carries a representative coordinate used as a fallback location.
type City struct {
	Name   string  `json:"name"`
	NameEn string  `json:"nameEn"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

var countries = []Country{
	{Code: "RU", Name: "Россия", NameEn: "Russia"},
	{Code: "UA", Name: "Украина", NameEn: "Ukraine"},
	{Code: "BY", Name: "Беларусь", NameEn: "Belarus"},
	{Code: "KZ", Name: "Казахстан", NameEn: "Kazakhstan"},
	{Code: "US", Name: "США", NameEn: "United States"},
	{Code: "GB", Name: "Великобритания", NameEn: "United Kingdom"},
	{Code: "DE", Name: "Германия", NameEn: "Germany"},
	{Code: "FR", Name: "Франция", NameEn: "France"},
	{Code: "IT", Name: "Италия", NameEn: "Italy"},
	{Code: "ES", Name: "Испания", NameEn: "Spain"},
	{Code: "PL", Name: "Польша", NameEn: "Poland"},
	{Code: "TR", Name: "Турция", NameEn: "Turkey"},
	{Code: "CN", Name: "Китай", NameEn: "China"},
	{Code: "JP", Name: "Япония", NameEn: "Japan"},
	{Code: "IN", Name: "Индия", NameEn: "India"},
}

var citiesByCountry = map[string][]City{
	"RU": {
		{Name: "Москва", NameEn: "Moscow", Lat: 55.7558, Lng: 37.6173},
		{Name: "Санкт-Петербург", NameEn: "Saint Petersburg", Lat: 59.9343, Lng: 30.3351},
		{Name: "Новосибирск", NameEn: "Novosibirsk", Lat: 55.0084, Lng: 82.9357},
		{Name: "Екатеринбург", NameEn: "Yekaterinburg", Lat: 56.8431, Lng: 60.6454},
		{Name: "Казань", NameEn: "Kazan", Lat: 55.8304, Lng: 49.0661},
		{Name: "Нижний Новгород", NameEn: "Nizhny Novgorod", Lat: 56.2965, Lng: 43.9361},
		{Name: "Челябинск", NameEn: "Chelyabinsk", Lat: 55.1644, Lng: 61.4368},
		{Name: "Самара", NameEn: "Samara", Lat: 53.2001, Lng: 50.15},
		{Name: "Омск", NameEn: "Omsk", Lat: 54.9885, Lng: 73.3242},
		{Name: "Ростов-на-Дону", NameEn: "Rostov-on-Don", Lat: 47.2357, Lng: 39.7015},
	},
	"UA": {
		{Name: "Киев", NameEn: "Kyiv", Lat: 50.4501, Lng: 30.5234},
		{Name: "Харьков", NameEn: "Kharkiv", Lat: 49.9935, Lng: 36.2304},
		{Name: "Одесса", NameEn: "Odessa", Lat: 46.4825, Lng: 30.7233},
		{Name: "Днепр", NameEn: "Dnipro", Lat: 48.4647, Lng: 35.0462},
		{Name: "Львов", NameEn: "Lviv", Lat: 49.8397, Lng: 24.0297},
	},
	"BY": {
		{Name: "Минск", NameEn: "Minsk", Lat: 53.9045, Lng: 27.5615},
		{Name: "Гомель", NameEn: "Gomel", Lat: 52.4345, Lng: 30.9754},
		{Name: "Могилёв", NameEn: "Mogilev", Lat: 53.9006, Lng: 30.3314},
	},
	"KZ": {
		{Name: "Алматы", NameEn: "Almaty", Lat: 43.2220, Lng: 76.8512},
		{Name: "Нур-Султан", NameEn: "Nur-Sultan", Lat: 51.1694, Lng: 71.4491},
		{Name: "Шымкент", NameEn: "Shymkent", Lat: 42.3417, Lng: 69.5901},
	},
	"US": {
		{Name: "Нью-Йорк", NameEn: "New York", Lat: 40.7128, Lng: -74.0060},
		{Name: "Лос-Анджелес", NameEn: "Los Angeles", Lat: 34.0522, Lng: -118.2437},
		{Name: "Чикаго", NameEn: "Chicago", Lat: 41.8781, Lng: -87.6298},
	},
	"GB": {
		{Name: "Лондон", NameEn: "London", Lat: 51.5074, Lng: -0.1278},
		{Name: "Манчестер", NameEn: "Manchester", Lat: 53.4808, Lng: -2.2426},
		{Name: "Бирмингем", NameEn: "Birmingham", Lat: 52.4862, Lng: -1.8904},
	},
	"DE": {
		{Name: "Берлин", NameEn: "Berlin", Lat: 52.5200, Lng: 13.4050},
		{Name: "Мюнхен", NameEn: "Munich", Lat: 48.1351, Lng: 11.5820},
		{Name: "Гамбург", NameEn: "Hamburg", Lat: 53.5511, Lng: 9.9937},
	},
}

// Countries returns the static country list.
func Countries() []Country { return countries }

// CitiesByCountry returns the cities for a country code, empty slice
// when the code is unknown.
func CitiesByCountry(code string) []City {
	if cities, ok := citiesByCountry[code]; ok {
		return cities
	}
	return []City{}
}
