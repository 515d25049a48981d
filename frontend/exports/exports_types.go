package exports

const (
	ExportTypeLoadsCSV  = "loads_csv"
	ExportTypeLoadsXLSX = "loads_xlsx"
)

var loadsHeader = []string{"time_slot", "lane", "trailer_no", "status", "ship_date", "seq", "planned", "done", "lo_code", "picker", "area", "flag"}
