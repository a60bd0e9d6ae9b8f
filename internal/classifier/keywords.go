package classifier

// Keyword tables driving classification. Each benefit entry maps a canonical
// property name to the Thai and English surface forms users actually type.
// Classification is a pure function over these tables; keeping them as data
// makes the heuristics auditable and testable in isolation.

type benefitEntry struct {
	Canonical string
	Variants  []string
}

var benefitTable = []benefitEntry{
	{
		Canonical: "moisturizing",
		Variants: []string{
			"moisturizing", "moisturising", "moisturizer", "hydrating", "hydration",
			"ความชุ่มชื้น", "ชุ่มชื้น", "เพิ่มความชุ่มชื้น",
		},
	},
	{
		Canonical: "anti-aging",
		Variants: []string{
			"anti-aging", "anti aging", "antiaging", "wrinkle", "anti-wrinkle", "firming",
			"ลดริ้วรอย", "ริ้วรอย", "ชะลอวัย", "กระชับผิว",
		},
	},
	{
		Canonical: "brightening",
		Variants: []string{
			"brightening", "whitening", "lightening", "radiance", "dark spot",
			"ผิวกระจ่างใส", "กระจ่างใส", "ผิวขาว", "ลดจุดด่างดำ",
		},
	},
	{
		Canonical: "anti-acne",
		Variants: []string{
			"anti-acne", "acne", "blemish", "pimple",
			"ลดสิว", "สิว", "รักษาสิว",
		},
	},
	{
		Canonical: "soothing",
		Variants: []string{
			"soothing", "calming", "anti-irritation", "sensitive skin",
			"ปลอบประโลมผิว", "ลดการระคายเคือง", "ผิวแพ้ง่าย",
		},
	},
	{
		Canonical: "uv-protection",
		Variants: []string{
			"uv protection", "sunscreen", "sun protection", "spf",
			"กันแดด", "ป้องกันยูวี", "ป้องกันแสงแดด",
		},
	},
	{
		Canonical: "anti-oxidant",
		Variants: []string{
			"antioxidant", "anti-oxidant", "free radical",
			"ต้านอนุมูลอิสระ", "สารต้านอนุมูลอิสระ",
		},
	},
	{
		Canonical: "exfoliating",
		Variants: []string{
			"exfoliating", "exfoliant", "peeling", "aha", "bha",
			"ผลัดเซลล์ผิว", "สครับ",
		},
	},
	{
		Canonical: "cleansing",
		Variants: []string{
			"cleansing", "cleanser", "surfactant", "foaming",
			"ทำความสะอาด", "สารชำระล้าง", "เกิดฟอง",
		},
	},
	{
		Canonical: "thickening",
		Variants: []string{
			"thickening", "thickener", "viscosity", "gelling",
			"สารเพิ่มความหนืด", "เพิ่มความหนืด",
		},
	},
	{
		Canonical: "emulsifying",
		Variants: []string{
			"emulsifying", "emulsifier",
			"อิมัลซิไฟเออร์", "สารอิมัลชัน",
		},
	},
	{
		Canonical: "preservative",
		Variants: []string{
			"preservative", "preservation", "antimicrobial",
			"สารกันเสีย", "กันเสีย",
		},
	},
}

// benefitSynonyms feed query expansion: each canonical property lists the
// alternates worth trying as extra semantic-search phrasings.
var benefitSynonyms = map[string][]string{
	"moisturizing":  {"hydrating", "humectant", "ความชุ่มชื้น"},
	"anti-aging":    {"anti-wrinkle", "firming", "ลดริ้วรอย"},
	"brightening":   {"whitening", "radiance", "ผิวกระจ่างใส"},
	"anti-acne":     {"blemish control", "ลดสิว"},
	"soothing":      {"calming", "ปลอบประโลมผิว"},
	"uv-protection": {"sunscreen", "กันแดด"},
}

// supplierKeywords signal the user is asking about a vendor rather than a
// material property.
var supplierKeywords = []string{
	"supplier", "vendor", "distributor", "manufacturer", "from company",
	"ผู้จำหน่าย", "ผู้ผลิต", "ซัพพลายเออร์", "บริษัทไหน", "เจ้าไหน",
}

// tradeNameMarkers hint that a following capitalized phrase is a trade name.
var tradeNameMarkers = []string{
	"trade name", "product name", "called", "named",
	"ชื่อการค้า", "ชื่อสินค้า", "ที่ชื่อ",
}
