package flatten

import (
	"net/url"

	"maude/internal/domain"
)

// DefaultLinkBase is the public MAUDE report detail page.
const DefaultLinkBase = "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfmaude/detail.cfm"

// ReportLink builds the MAUDE detail URL for a record. It is blank when the
// record has no mdr_report_key. The product code and device sequence number
// of the first device are appended only when both are present.
func ReportLink(base string, r domain.Record) string {
	key := r.Field("mdr_report_key")
	if key.IsBlank() {
		return ""
	}
	if base == "" {
		base = DefaultLinkBase
	}
	link := base + "?mdrfoi__id=" + url.QueryEscape(key.Text())

	devices := r.Devices()
	if len(devices) == 0 {
		return link
	}
	pc := devices[0].Get("device_report_product_code")
	seq := devices[0].Get("device_sequence_number")
	if pc.IsBlank() || seq.IsBlank() {
		return link
	}
	return link + "&pc=" + url.QueryEscape(pc.Text()) + "&device_sequence_no=" + url.QueryEscape(seq.Text())
}
