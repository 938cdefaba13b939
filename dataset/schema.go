package dataset

// ClevelandURL is the canonical source of the processed Cleveland
// heart-disease data: headerless CSV, 14 columns, 303 records, with "?"
// marking missing entries in the ca and thal columns.
const ClevelandURL = "https://archive.ics.uci.edu/ml/machine-learning-databases/heart-disease/processed.cleveland.data"

// MissingSentinel is the marker the source uses for absent values.
const MissingSentinel = "?"

// ClevelandColumns lists the 14 column names in source order.
var ClevelandColumns = []string{
	"age",      // years
	"sex",      // 0 = female, 1 = male
	"cp",       // chest pain type, 1-4
	"trestbps", // resting blood pressure, mm Hg
	"chol",     // serum cholesterol, mg/dl
	"fbs",      // fasting blood sugar > 120 mg/dl, 0/1
	"restecg",  // resting ECG result, 0-2
	"thalach",  // maximum heart rate achieved
	"exang",    // exercise-induced angina, 0/1
	"oldpeak",  // ST depression induced by exercise
	"slope",    // slope of peak exercise ST segment
	"ca",       // number of major vessels colored by fluoroscopy
	"thal",     // thallium stress result
	"num",      // disease severity, 0-4
}

// SexLabels maps the sex codes to their semantic levels.
var SexLabels = map[float64]string{
	0: "Female",
	1: "Male",
}

// ChestPainLabels maps the cp codes to their semantic levels.
var ChestPainLabels = map[float64]string{
	1: "typical angina",
	2: "atypical angina",
	3: "non-anginal",
	4: "asymptomatic",
}

// RestECGLabels maps the restecg codes to their semantic levels.
var RestECGLabels = map[float64]string{
	0: "normal",
	1: "st-t abnormality",
	2: "lv hypertrophy",
}

// CoerceCleveland applies the three categorical coercions the analysis
// performs right after loading: sex, cp and restecg become labeled factors.
// All other columns stay numeric.
func CoerceCleveland(t *Table) (*Table, error) {
	out, err := t.Coerce("sex", SexLabels)
	if err != nil {
		return nil, err
	}
	out, err = out.Coerce("cp", ChestPainLabels)
	if err != nil {
		return nil, err
	}
	return out.Coerce("restecg", RestECGLabels)
}
