package xmlutil

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

const schemaDoc = `<?xml version="1.0"?>
<!-- device schema -->
<Schema version="2">
  <Setting id="dimmer.level" min="0" max="100" kind="uint8">
    <Name>Dimmer <b>level</b></Name>
    <Extra><Deep/></Extra>
  </Setting>
  <Comment>ignored</Comment>
  <Setting id="room.setpoint" min="-20" max="40.5" kind="int16"/>
</Schema>`

func TestReader_EachAndAttributes(t *testing.T) {
	r := NewReader(strings.NewReader(schemaDoc))

	root, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if root.Name.Local != "Schema" || AttrOr(root, "version", "") != "2" {
		t.Fatalf("root = %v", root)
	}

	type row struct {
		id       string
		min, max float64
		name     string
	}
	var got []row

	err = r.Each(root, "Setting", func(se xml.StartElement) error {
		id, ok := Attr(se, "id")
		if !ok {
			t.Errorf("missing id")
		}
		min, err := AttrFloat(se, "min")
		if err != nil {
			return err
		}
		max, err := AttrFloat(se, "max")
		if err != nil {
			return err
		}

		var name string
		// Read <Name> only; <Extra> is left for Each to skip.
		if err := r.Each(se, "Name", func(xml.StartElement) error {
			name, err = r.ReadText()
			return err
		}); err != nil {
			return err
		}
		got = append(got, row{id, min, max, name})
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error = %v", err)
	}

	want := []row{
		{"dimmer.level", 0, 100, "Dimmer level"},
		{"room.setpoint", -20, 40.5, ""},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if r.Depth() != 0 {
		t.Errorf("Depth() = %d after Each, want 0", r.Depth())
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() at end = %v, want io.EOF", err)
	}
}

func TestReader_EachPartialConsumption(t *testing.T) {
	r := NewReader(strings.NewReader(`<a><b><c>1</c><c>2</c></b><b/></a>`))
	root, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	count := 0
	err = r.Each(root, "", func(se xml.StartElement) error {
		count++
		if count == 1 {
			// Read one grandchild and abandon the rest.
			if _, err := r.Next(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error = %v", err)
	}
	if count != 2 {
		t.Errorf("visited %d children, want 2", count)
	}
}

func TestReader_SkipAndDecode(t *testing.T) {
	r := NewReader(strings.NewReader(`<root><skip><x/></skip><item code="7">seven</item></root>`))

	if _, err := r.Next(); err != nil {
		t.Fatalf("Next(root) error = %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next(skip) error = %v", err)
	}
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip() error = %v", err)
	}

	se, err := r.Next()
	if err != nil {
		t.Fatalf("Next(item) error = %v", err)
	}
	var item struct {
		Code string `xml:"code,attr"`
		Text string `xml:",chardata"`
	}
	if err := r.Decode(se, &item); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if item.Code != "7" || item.Text != "seven" {
		t.Errorf("item = %+v", item)
	}
	if r.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", r.Depth())
	}
}

func TestAttrFloat_Errors(t *testing.T) {
	se := xml.StartElement{
		Name: xml.Name{Local: "Setting"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "max"}, Value: "lots"}},
	}

	if _, err := AttrFloat(se, "min"); !errors.Is(err, ErrMissingAttribute) {
		t.Errorf("missing error = %v", err)
	}
	if _, err := AttrFloat(se, "max"); !errors.Is(err, ErrInvalidAttribute) {
		t.Errorf("invalid error = %v", err)
	}
	if got := AttrOr(se, "unit", "%"); got != "%" {
		t.Errorf("AttrOr() = %q", got)
	}
}

func TestReader_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"truncated", `<a><b>`},
		{"mismatched", `<a></b>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.doc))
			root, err := r.Next()
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			err = r.Each(root, "", func(xml.StartElement) error { return nil })
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Each() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestReader_CallbackErrorStops(t *testing.T) {
	r := NewReader(strings.NewReader(`<a><b/><b/></a>`))
	root, _ := r.Next()

	errStop := errors.New("stop")
	calls := 0
	err := r.Each(root, "b", func(xml.StartElement) error {
		calls++
		return errStop
	})
	if !errors.Is(err, errStop) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}
