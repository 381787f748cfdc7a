package config

// Default returns the built-in configuration. Each call returns fresh maps and
// slices, so callers may overlay without affecting other copies.
func Default() Config {
	return Config{
		Job:     "maude_export",
		Log:     Log{Mode: "prod"},
		Storage: Storage{Kind: "sqlite", DSN: "file:maude.db?cache=shared", Options: Options{}},
		Metrics: Metrics{Backend: "", Namespace: "maude."},
		Output:  Output{Dir: "out"},
		Ingest:  Ingest{BatchSize: 500, Buffer: 1000, EnvelopeKey: "results"},
		Export: Export{
			Fields:         defaultFields(),
			LinkBase:       "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfmaude/detail.cfm",
			Labels:         defaultLabels(),
			Collapsed:      defaultCollapsed(),
			Priority:       defaultPriority(),
			Translations:   defaultTranslations(),
			DatePrefixes:   defaultDatePrefixes(),
			Groupings:      defaultGroupings(),
			IncludeRaw:     true,
			ChunkSize:      1000,
			ChunkThreshold: 5000,
			TopBrands:      10,
		},
	}
}

func defaultFields() []string {
	return []string{
		"adverse_event_flag", "product_problems", "product_problem_flag",
		"date_of_event", "date_report", "date_received", "device_date_of_manufacturer",
		"event_type", "number_devices_in_event", "number_patients_in_event",
		"previous_use_code", "remedial_action", "removal_correction_number",
		"report_number", "single_use_flag", "report_source_code",
		"health_professional", "reporter_occupation_code", "initial_report_to_fda",
		"reprocessed_and_reused_flag",
		"device.device_event_key", "device.date_received", "device.brand_name",
		"device.generic_name", "device.device_report_product_code",
		"device.model_number", "device.catalog_number", "device.lot_number",
		"device.other_id_number", "device.expiration_date_of_device",
		"device.device_availability", "device.device_evaluated_by_manufacturer",
		"device.device_operator", "device.implant_flag", "device.date_removed_flag",
		"device.manufacturer_d_name", "device.manufacturer_d_country",
		"device.device_class", "device.device_name", "device.fei_number",
		"device.medical_specialty_description", "device.registration_number",
		"patient.date_received", "patient.patient_age", "patient.patient_sex",
		"patient.patient_weight", "patient.patient_ethnicity", "patient.patient_race",
		"patient.patient_problems", "patient.sequence_number_outcome",
		"patient.sequence_number_treatment",
		"mdr_text.date_report", "mdr_text.mdr_text_key", "mdr_text.patient_sequence_number",
		"mdr_text.text", "mdr_text.text_type_code",
		"type_of_report", "date_facility_aware", "report_date", "report_to_fda",
		"date_report_to_fda", "report_to_manufacturer", "date_report_to_manufacturer",
		"event_location", "manufacturer_name", "manufacturer_address_1",
		"manufacturer_address_2", "manufacturer_city", "manufacturer_country",
		"manufacturer_gl_name", "manufacturer_gl_country", "date_manufacturer_received",
		"source_type", "event_key", "mdr_report_key", "fei_number",
		"medical_specialty_description", "registration_number", "regulation_number",
	}
}

func defaultLabels() map[string]string {
	return map[string]string{
		"event_id":                                "Event ID",
		"report_number":                           "Report Number",
		"mdr_report_key":                          "MDR Report Key",
		"maude_report_link":                       "MAUDE Report Link",
		"date_of_event":                           "Event Date",
		"date_report":                             "Report Date",
		"date_received":                           "Date Received",
		"date_manufacturer_received":              "Date Manufacturer Received",
		"device_date_received":                    "Device Date Received",
		"device_expiration_date_of_device":        "Device Expiration Date",
		"patient_date_received":                   "Patient Date Received",
		"device_generic_name":                     "Product Class",
		"device_brand_name":                       "Brand Name",
		"device_manufacturer_d_name":              "Manufacturer",
		"device_device_report_product_code":       "Product Code",
		"device_model_number":                     "Model Number",
		"device_catalog_number":                   "Catalog Number",
		"device_lot_number":                       "Lot Number",
		"device_device_availability":              "Device Availability",
		"device_device_evaluated_by_manufacturer": "Device Evaluated By Manufacturer",
		"device_manufacturer_d_country":           "Manufacturer Country",
		"single_use_flag":                         "Single Use Flag",
		"reprocessed_and_reused_flag":             "Reprocessed And Reused Flag",
		"device_device_operator":                  "Device Operator",
		"report_source_code":                      "Report Source Code",
		"health_professional":                     "Health Professional",
		"reporter_occupation_code":                "Reporter Occupation Code",
		"source_type":                             "Source Type",
		"patient_patient_age":                     "Patient Age",
		"patient_patient_sex":                     "Patient Sex",
		"patient_patient_weight":                  "Patient Weight",
		"patient_patient_ethnicity":               "Patient Ethnicity",
		"patient_patient_race":                    "Patient Race",
		"event_type":                              "Event Type",
		"adverse_event_flag":                      "Adverse Event Flag",
		"patient_patient_problems":                "Patient Problem",
		"patient_sequence_number_outcome":         "Patient Outcome",
		"patient_sequence_number_treatment":       "Patient Treatment",
		"product_problem_flag":                    "Product Problem Flag",
		"product_problems":                        "Device Problem",
		"date_report_to_fda":                      "Date Report To FDA",
		"date_report_to_manufacturer":             "Date Report To Manufacturer",
	}
}

func defaultCollapsed() map[string]string {
	return map[string]string{
		"patient_patient_problems":          "Patient Problem",
		"patient_sequence_number_outcome":   "Patient Outcome",
		"patient_sequence_number_treatment": "Patient Treatment",
	}
}

func defaultPriority() []string {
	return []string{
		"Event ID", "Report Number", "MDR Report Key", "MAUDE Report Link",
		"Event Date", "Report Date", "Date Received", "Date Report To FDA",
		"Date Report To Manufacturer", "Date Manufacturer Received",
		"Device Date Received", "Device Expiration Date", "Patient Date Received",
		"Product Class", "Brand Name", "Product Code", "Model Number",
		"Manufacturer", "Manufacturer Country", "Lot Number", "Catalog Number",
		"Device Availability", "Device Evaluated By Manufacturer", "Single Use Flag",
		"Reprocessed And Reused Flag", "Device Operator", "Report Source Code",
		"Health Professional", "Reporter Occupation Code", "Source Type",
		"Patient Age", "Patient Sex", "Patient Weight", "Patient Ethnicity",
		"Patient Race", "Event Type", "Adverse Event Flag", "Product Problem Flag",
		"Device Problem", "Patient Problem", "Patient Outcome", "Patient Treatment",
	}
}

func yesNo() map[string]string {
	return map[string]string{"Y": "Yes", "N": "No", "I": "Invalid/Incomplete", "*": "Not Available"}
}

func defaultTranslations() []TranslationRule {
	return []TranslationRule{
		{Match: "Patient Outcome", Multi: true, Codes: map[string]string{
			"R": "Required Intervention", "O": "Other", "H": "Hospitalization",
			"D": "Death", "L": "Life Threatening", "I": "Injury", "M": "Malfunction",
			"N": "No Information", "U": "Unknown", "S": "Disability",
		}},
		{Match: "Device Evaluated By Manufacturer", Codes: map[string]string{
			"R": "Returned to Manufacturer", "Y": "Yes", "N": "No",
			"I": "Invalid/Incomplete", "*": "Not Available",
		}},
		{Match: "Reporter Occupation Code", Codes: map[string]string{
			"501":                             "Administrator/Supervisor",
			"003":                             "Non-Healthcare Professional",
			"117":                             "Nurse Practitioner",
			"2":                               "Nurse",
			"PHYSICIAN":                       "Physician",
			"NURSE":                           "Nurse",
			"OTHER":                           "Other",
			"OTHER HEALTH CARE PROFESSIONAL":  "Other Health Care Professional",
			"RISK MANAGER":                    "Risk Manager",
			"PATIENT":                         "Patient",
			"ATTORNEY":                        "Attorney",
			"PATIENT FAMILY MEMBER OR FRIEND": "Patient Family Member or Friend",
			"UNKNOWN":                         "Unknown",
		}},
		{Match: "Previous Use Code", Codes: map[string]string{
			"I": "Invalid/Incomplete", "N": "No", "U": "Unknown", "*": "Not Available",
		}},
		{Match: "Report To FDA", Codes: yesNo()},
		{Match: "Health Professional", Codes: yesNo()},
		{Match: "Single Use Flag", Codes: yesNo()},
		{Match: "Reprocessed And Reused Flag", Codes: map[string]string{
			"N": "No", "I": "Invalid/Incomplete",
		}},
		{Match: "Adverse Event Flag", Codes: map[string]string{"Y": "Yes", "N": "No"}},
		{Match: "Product Problem Flag", Codes: map[string]string{
			"Y": "Yes", "N": "No", "*": "Not Available",
		}},
		{Match: "Device Operator", Codes: map[string]string{
			"I": "No Information", "0": "Other", "HEALTH PROFESSIONAL": "Health Professional",
			"LAY USER/PATIENT": "Lay User/Patient", "INVALID DATA": "Invalid Data",
			"PHYSICIAN": "Physician", "OTHER": "Other",
		}},
		{Match: "Event Location", Codes: yesNo()},
		{Match: "Manufacturer Link Flag", Codes: yesNo()},
	}
}

func defaultDatePrefixes() []string {
	return []string{
		"date_of_event", "date_report", "date_received", "date_manufacturer_received",
		"device_date_received", "device_expiration_date_of_device", "patient_date_received",
		"device_date_of_manufacturer", "device_date_returned_to_manufacturer",
		"device_date_removed_flag", "mdr_text_date_report",
		"date_facility_aware", "report_date", "date_report_to_fda", "date_report_to_manufacturer",
	}
}

func g(label string, prefixes ...string) Grouping {
	return Grouping{Label: label, Prefixes: prefixes}
}

func defaultGroupings() Groupings {
	return Groupings{
		Age:       g("Age (years) median (range)", "patient_patient_age"),
		Weight:    g("Weight median (range)", "patient_patient_weight"),
		Sex:       g("Sex", "patient_patient_sex"),
		Ethnicity: g("Ethnicity", "patient_patient_ethnicity"),
		Race:      g("Race", "patient_patient_race"),
		Tables: []Grouping{
			g("Event Type", "event_type"),
			g("Report Source Code", "report_source_code"),
			g("Source Type", "source_type"),
			g("Reporter Occupation Code", "reporter_occupation_code"),
			g("Product Code", "device_device_report_product_code"),
			g("Model Number", "device_model_number"),
			g("Manufacturer", "device_manufacturer_d_name"),
			g("Manufacturer Country", "device_manufacturer_d_country"),
			g("Brand Name", "device_brand_name"),
			g("Product Class", "device_generic_name"),
		},
		DeviceProblem:  g("Device Problem", "product_problems"),
		PatientProblem: g("Patient Problem", "patient_patient_problems"),
		Brand:          g("Brand Name", "device_brand_name"),
		EventType:      g("Event Type", "event_type"),
	}
}
