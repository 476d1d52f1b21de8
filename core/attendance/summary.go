package attendance

// Summarize counts the records. Any status other than "present" (any case) counts as absent.
func Summarize(records []Record) Summary {
	var present int
	for _, r := range records {
		if r.IsPresent() {
			present++
		}
	}
	return Summary{
		Total:   len(records),
		Present: present,
		Absent:  len(records) - present,
	}
}
