package policy

// Built-in tables. Any list set in a policy YAML file replaces the matching
// table entirely.

var defaultBlockedPhrases = []string{
	"page not found",
	"customers also bought",
	"customers also viewed",
	"404",
	"recommendations",
	"recommended for you",
	"similar items",
	"sponsored",
	"access denied",
	"shopping cart",
	"sign in",
}

var defaultErrorPhrases = []string{
	"error",
	"not found",
	"unavailable",
	"sorry",
	"oops",
}

var defaultCaptchaIndicators = []string{
	"captcha",
	"verification",
	"robot",
	"automated",
	"suspicious activity",
	"verify you are human",
	"security check",
	"please complete",
	"prove you're not a robot",
}

var defaultStopWords = []string{
	"the", "and", "for", "with", "new", "buy", "best", "cheap", "price",
	"deal", "deals", "sale", "online", "shop", "from", "latest",
	"original", "genuine", "free", "shipping",
}

var defaultBrands = []string{
	"apple", "iphone", "ipad", "macbook", "airpods",
	"samsung", "galaxy",
	"google", "pixel",
	"sony", "playstation",
	"microsoft", "xbox", "surface",
	"nintendo",
	"lg", "dell", "hp", "lenovo", "asus", "acer", "msi", "razer",
	"oneplus", "xiaomi", "huawei", "motorola", "nokia",
	"bose", "jbl", "sennheiser", "beats",
	"canon", "nikon", "gopro", "dji",
	"panasonic", "philips", "dyson", "garmin", "fitbit", "logitech",
	"amazon", "kindle",
}

var defaultQualifierWords = []string{
	"pro", "max", "ultra", "plus", "mini", "air", "lite", "oled", "se",
}

var defaultQualifierPatterns = []string{
	`\b\d+\s?(gb|tb|mb)\b`,
	`\b\d+(\.\d+)?\s?("|-?inch(es)?\b)`,
	`\b\d+\s?(mm|hz|mp|w|mah)\b`,
}

var defaultProductPathSegments = []string{
	"product", "products", "item", "items", "detail", "details",
	"dp", "p", "ip", "gp", "pd", "sku",
}
