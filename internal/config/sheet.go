package config

// SheetConfig describes the geometry of the interface definition workbook:
// which sheet to read, where the header metadata lives, where field rows
// start, and the column layout for input and output cells.
type SheetConfig struct {
	SheetName string `yaml:"sheet_name"`
	HeaderRow int    `yaml:"header_row"`
	StartRow  int    `yaml:"start_row"`

	// DetectCol/DetectRow identify the cell whose value decides between the
	// default and the SAP-format column layout.
	DetectCol string `yaml:"detect_col"`
	DetectRow int    `yaml:"detect_row"`

	Columns    ColumnLayout `yaml:"columns"`
	ColumnsSAP ColumnLayout `yaml:"columns_sap"`
}

// ColumnLayout maps logical fields to workbook column letters.
type ColumnLayout struct {
	Header HeaderColumns `yaml:"header"`
	Input  InputColumns  `yaml:"input"`
	Output OutputColumns `yaml:"output"`
}

// HeaderColumns locate the interface metadata on the header row.
type HeaderColumns struct {
	Module string `yaml:"module"`
	IfName string `yaml:"if_name"`
	IfDesc string `yaml:"if_desc"`
}

// InputColumns locate the per-row input cells.
type InputColumns struct {
	FieldName   string `yaml:"field_name"`
	KeyFlag     string `yaml:"key_flag"`
	Obligatory  string `yaml:"obligatory"`
	DataType    string `yaml:"data_type"`
	FieldID     string `yaml:"field_id"`
	LengthTotal string `yaml:"length_total"`
	LengthDec   string `yaml:"length_dec"`
	FieldText   string `yaml:"field_text"`
	SampleValue string `yaml:"sample_value"`
	Remark      string `yaml:"remark"`
	Verify      string `yaml:"verify"`
}

// OutputColumns locate the per-row result cells.
type OutputColumns struct {
	FieldDesc   string `yaml:"field_desc"`
	KeyFlag     string `yaml:"key_flag"`
	Obligatory  string `yaml:"obligatory"`
	TableID     string `yaml:"table_id"`
	FieldID     string `yaml:"field_id"`
	DataType    string `yaml:"data_type"`
	LengthTotal string `yaml:"length_total"`
	LengthDec   string `yaml:"length_dec"`
	Notes       string `yaml:"notes"`
	SampleValue string `yaml:"sample_value"`
	Match       string `yaml:"match"`
	Verify      string `yaml:"verify"`
}

// DefaultSheetConfig returns the layout of the standard workbook template.
func DefaultSheetConfig() SheetConfig {
	layout := ColumnLayout{
		Header: HeaderColumns{Module: "C", IfName: "H", IfDesc: "I"},
		Input: InputColumns{
			FieldName:   "C",
			KeyFlag:     "D",
			Obligatory:  "E",
			DataType:    "I",
			FieldID:     "H",
			LengthTotal: "J",
			LengthDec:   "K",
			FieldText:   "L",
			SampleValue: "N",
			Remark:      "O",
			Verify:      "P",
		},
		Output: OutputColumns{
			FieldDesc:   "S",
			KeyFlag:     "T",
			Obligatory:  "U",
			TableID:     "V",
			FieldID:     "W",
			DataType:    "X",
			LengthTotal: "Y",
			LengthDec:   "Z",
			Notes:       "AA",
			SampleValue: "AB",
			Match:       "AC",
			Verify:      "AD",
		},
	}

	// The SAP-format template shifts the descriptive text and sample columns.
	sap := layout
	sap.Input.FieldText = "M"
	sap.Input.SampleValue = "O"
	sap.Input.Remark = "P"
	sap.Input.Verify = "Q"

	return SheetConfig{
		SheetName:  "IF項目定義",
		HeaderRow:  6,
		StartRow:   13,
		DetectCol:  "F",
		DetectRow:  6,
		Columns:    layout,
		ColumnsSAP: sap,
	}
}
