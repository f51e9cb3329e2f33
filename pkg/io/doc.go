// Package io reads and writes gantt datasets as JSON, YAML or TOML.
//
// # Document Format
//
// All three encodings share one shape:
//
//	{
//	  "resources": [
//	    {"id": "M1", "name": "Machine A", "tasks": [
//	      {"id": "A1", "label": "Batch A1",
//	       "start": "2025-08-10T06:00:00", "end": "2025-08-10T18:00:00",
//	       "color": "#bfdbfe", "successors": ["B2"]}
//	    ]}
//	  ],
//	  "batches": [{"id": "blue", "label": "Blue", "color": "#93c5fd"}],
//	  "viewport": {"start": "2025-08-10", "end": "2025-08-14"}
//	}
//
// Only "resources" is required. Resource order is row order and task
// order within a resource is preserved. Instants are strings in RFC 3339
// or one of the zone-less forms "2006-01-02T15:04:05", "2006-01-02 15:04"
// and "2006-01-02"; JSON also accepts Unix milliseconds. Zone-less values
// are interpreted later, in the time zone the layout is configured with.
//
// # Validation
//
// JSON documents are checked against an embedded JSON Schema before they
// are decoded, so unknown fields and wrong types are reported with their
// location. Every format then gets the structural checks of
// [gantt.Dataset.Validate]. Time ranges are not validated here: a task
// with an unparsable or reversed range is rejected by the layout pass,
// not by the reader.
//
// # Formats
//
// [ReadDataset] and [WriteDataset] choose the encoding from the file
// extension (.json, .yaml, .yml, .toml). [Decode] and [Encode] take an
// explicit [Format] and work on any reader or writer.
package io
