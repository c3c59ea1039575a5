package project

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleState = `{
  "calibrationSettingsBase": {
    "referenceDistanceAxis": null,
    "referenceDistance": 1,
    "referenceDistanceUnit": "Meters",
    "cameraData": {"customSensorWidth": 36, "customSensorHeight": 24}
  },
  "calibrationSettings1VP": {"principalPointMode": "Default"},
  "cameraParameters": {
    "principalPoint": {"x": 0.25, "y": -0.125},
    "viewTransform": {"rows": [[1,0,0,0],[0,1,0,0],[0,0,1,0],[0,0,0,1]]},
    "cameraTransform": {"rows": [[1,0,0,5],[0,1,0,6],[0,0,1,7],[0,0,0,1]]},
    "horizontalFieldOfView": 1.0471975511965976,
    "verticalFieldOfView": 0.7297276562269663,
    "vanishingPoints": [{"x": 1, "y": 0}],
    "vanishingPointAxes": ["xPositive", "yPositive", "zPositive"],
    "relativeFocalLength": 1.7320508075688774,
    "imageWidth": 1920,
    "imageHeight": 1080
  }
}`

var sampleImage = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 1, 2, 3, 4, 5}

// buildProject assembles a project file from its parts
func buildProject(magic uint32, version, stateSize, imageSize int32, state string, image []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, magic)
	binary.Write(&buf, binary.LittleEndian, version)
	binary.Write(&buf, binary.LittleEndian, stateSize)
	binary.Write(&buf, binary.LittleEndian, imageSize)
	buf.WriteString(state)
	buf.Write(image)
	return buf.Bytes()
}

func validProject() []byte {
	return buildProject(Magic, 1, int32(len(sampleState)), int32(len(sampleImage)), sampleState, sampleImage)
}

func TestDecodeValidProject(t *testing.T) {
	p, err := DecodeBytes(validProject(), "room.fspy")
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	if p.Version != 1 {
		t.Errorf("Expected version 1, got %d", p.Version)
	}
	if p.FileName != "room.fspy" {
		t.Errorf("Expected file name room.fspy, got %q", p.FileName)
	}
	if p.ReferenceDistanceUnit != "Meters" {
		t.Errorf("Expected unit Meters, got %q", p.ReferenceDistanceUnit)
	}

	cp := p.CameraParameters
	if cp.PrincipalPoint.X != 0.25 || cp.PrincipalPoint.Y != -0.125 {
		t.Errorf("Unexpected principal point %+v", cp.PrincipalPoint)
	}
	if cp.HorizontalFieldOfView != float32(1.0471975511965976) {
		t.Errorf("Unexpected horizontal FOV %v", cp.HorizontalFieldOfView)
	}
	if cp.ImageWidth != 1920 || cp.ImageHeight != 1080 {
		t.Errorf("Expected 1920x1080, got %dx%d", cp.ImageWidth, cp.ImageHeight)
	}
	if cp.RelativeFocalLength != 1.7320508075688774 {
		t.Errorf("Unexpected relative focal length %v", cp.RelativeFocalLength)
	}
	rows := cp.CameraTransform.Rows
	if rows[0][3] != 5 || rows[1][3] != 6 || rows[2][3] != 7 || rows[3][3] != 1 {
		t.Errorf("Unexpected camera transform %v", rows)
	}

	if !bytes.Equal(p.ImageBytes, sampleImage) {
		t.Errorf("Image bytes differ: got %v", p.ImageBytes)
	}
	if len(p.ImageBytes) != len(sampleImage) {
		t.Errorf("Expected %d image bytes, got %d", len(sampleImage), len(p.ImageBytes))
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	data := validProject()
	r := bytes.NewReader(data)

	first, err := Decode(r, "a.fspy")
	if err != nil {
		t.Fatalf("first decode failed: %v", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	second, err := Decode(r, "a.fspy")
	if err != nil {
		t.Fatalf("second decode failed: %v", err)
	}

	if first.Version != second.Version ||
		first.CameraParameters != second.CameraParameters ||
		first.ReferenceDistanceUnit != second.ReferenceDistanceUnit ||
		first.FileName != second.FileName ||
		!bytes.Equal(first.ImageBytes, second.ImageBytes) {
		t.Errorf("Decoding twice gave different projects:\n%+v\n%+v", first, second)
	}
}

func TestDecodeFromOffset(t *testing.T) {
	prefix := []byte("garbage before the project")
	data := append(append([]byte{}, prefix...), validProject()...)
	r := bytes.NewReader(data)
	if _, err := r.Seek(int64(len(prefix)), io.SeekStart); err != nil {
		t.Fatal(err)
	}

	p, err := Decode(r, "")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(p.ImageBytes, sampleImage) {
		t.Errorf("Image bytes differ: got %v", p.ImageBytes)
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		check func(error) bool
	}{
		{
			name: "bad magic with corrupt body",
			data: buildProject(12345, 1, 5, 3, "{{{{{", []byte{1, 2, 3}),
			check: func(err error) bool {
				var fe *FormatError
				return errors.As(err, &fe) && fe.Reason == "not an fSpy project"
			},
		},
		{
			name: "bad magic and bad version",
			data: buildProject(12345, 7, 0, 0, "", nil),
			check: func(err error) bool {
				var fe *FormatError
				return errors.As(err, &fe) && fe.Reason == "not an fSpy project"
			},
		},
		{
			name: "unsupported version",
			data: buildProject(Magic, 2, int32(len(sampleState)), 3, sampleState, []byte{1, 2, 3}),
			check: func(err error) bool {
				var ve *UnsupportedVersionError
				return errors.As(err, &ve) && ve.Version == 2
			},
		},
		{
			name: "version checked before image size",
			data: buildProject(Magic, 3, 0, 0, "", nil),
			check: func(err error) bool {
				var ve *UnsupportedVersionError
				return errors.As(err, &ve)
			},
		},
		{
			name: "no image data",
			data: buildProject(Magic, 1, int32(len(sampleState)), 0, sampleState, nil),
			check: func(err error) bool {
				var fe *FormatError
				return errors.As(err, &fe) && fe.Reason == "no image data"
			},
		},
		{
			name: "negative image size",
			data: buildProject(Magic, 1, int32(len(sampleState)), -4, sampleState, nil),
			check: func(err error) bool {
				var fe *FormatError
				return errors.As(err, &fe) && fe.Reason == "no image data"
			},
		},
		{
			name: "no image data with corrupt state",
			data: buildProject(Magic, 1, 4, 0, "nope", nil),
			check: func(err error) bool {
				var fe *FormatError
				return errors.As(err, &fe) && fe.Reason == "no image data"
			},
		},
		{
			name: "negative state size",
			data: buildProject(Magic, 1, -1, 3, "", []byte{1, 2, 3}),
			check: func(err error) bool {
				var fe *FormatError
				return errors.As(err, &fe)
			},
		},
		{
			name: "short header",
			data: validProject()[:10],
			check: func(err error) bool {
				var te *TruncatedInputError
				return errors.As(err, &te) && te.Region == "header" && te.Got == 10
			},
		},
		{
			name: "empty input",
			data: nil,
			check: func(err error) bool {
				var te *TruncatedInputError
				return errors.As(err, &te) && te.Got == 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeBytes(tt.data, "x.fspy")
			if err == nil {
				t.Fatal("Expected an error")
			}
			if p != nil {
				t.Errorf("Expected no project on failure, got %+v", p)
			}
			if !tt.check(err) {
				t.Errorf("Unexpected error: %v (%T)", err, err)
			}
		})
	}
}

func TestDecodeTruncatedRegions(t *testing.T) {
	t.Run("state longer than stream", func(t *testing.T) {
		data := buildProject(Magic, 1, 10000, 3, sampleState, nil)
		_, err := DecodeBytes(data, "")
		var te *TruncatedInputError
		if !errors.As(err, &te) {
			t.Fatalf("Expected TruncatedInputError, got %v", err)
		}
		if te.Region != "state" || te.Want != 10000 || te.Got != int64(len(sampleState)) {
			t.Errorf("Unexpected truncation details: %+v", te)
		}
	})

	t.Run("image shorter than declared", func(t *testing.T) {
		data := buildProject(Magic, 1, int32(len(sampleState)), 100, sampleState, sampleImage)
		_, err := DecodeBytes(data, "")
		var te *TruncatedInputError
		if !errors.As(err, &te) {
			t.Fatalf("Expected TruncatedInputError, got %v", err)
		}
		if te.Region != "image" || te.Want != 100 || te.Got != int64(len(sampleImage)) {
			t.Errorf("Unexpected truncation details: %+v", te)
		}
	})

	t.Run("huge declared image", func(t *testing.T) {
		data := buildProject(Magic, 1, int32(len(sampleState)), 1<<30, sampleState, sampleImage)
		_, err := DecodeBytes(data, "")
		var te *TruncatedInputError
		if !errors.As(err, &te) {
			t.Fatalf("Expected TruncatedInputError, got %v", err)
		}
	})
}

func TestDecodeTrailingBytesIgnored(t *testing.T) {
	data := append(validProject(), 0xde, 0xad)
	p, err := DecodeBytes(data, "")
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if !bytes.Equal(p.ImageBytes, sampleImage) {
		t.Errorf("Image region should stop at the declared size, got %v", p.ImageBytes)
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	state := `{"a":"` + string([]byte{0xff, 0xfe}) + `"}`
	data := buildProject(Magic, 1, int32(len(state)), 3, state, []byte{1, 2, 3})

	_, err := DecodeBytes(data, "")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FormatError, got %v", err)
	}
	if !strings.Contains(fe.Reason, "UTF-8") {
		t.Errorf("Expected a UTF-8 reason, got %q", fe.Reason)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	state := `{"cameraParameters": `
	data := buildProject(Magic, 1, int32(len(state)), 3, state, []byte{1, 2, 3})

	_, err := DecodeBytes(data, "")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FormatError, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kitchen.fspy")
	if err := os.WriteFile(path, validProject(), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if p.FileName != "kitchen.fspy" {
		t.Errorf("Expected file name from path, got %q", p.FileName)
	}

	if _, err := Open(filepath.Join(dir, "missing.fspy")); err == nil {
		t.Error("Expected error for missing file")
	} else if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped not-exist error, got %v", err)
	}
}

func TestImageAspectRatio(t *testing.T) {
	p, err := DecodeBytes(validProject(), "")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.ImageAspectRatio(); got != 1920.0/1080.0 {
		t.Errorf("Expected aspect %f, got %f", 1920.0/1080.0, got)
	}
}

func BenchmarkDecode(b *testing.B) {
	image := bytes.Repeat([]byte{0xab}, 1<<20)
	data := buildProject(Magic, 1, int32(len(sampleState)), int32(len(image)), sampleState, image)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeBytes(data, ""); err != nil {
			b.Fatal(err)
		}
	}
}
