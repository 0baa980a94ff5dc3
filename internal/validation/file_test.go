package validation

import "testing"

func TestValidateFileRejectsOversizedFile(t *testing.T) {
	result := ValidateFile(FileInfo{Name: "relatorio.pdf", Size: 6 * 1024 * 1024, Type: "application/pdf"}, 5, ".pdf")
	if result.IsValid {
		t.Fatalf("expected oversized file to be rejected")
	}
	if result.Message != "Arquivo muito grande (6.0 MiB). Máximo: 5MB" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestValidateFileMatchesExtensionOrMIME(t *testing.T) {
	tests := []struct {
		file    FileInfo
		allowed string
		valid   bool
	}{
		{FileInfo{Name: "foto.JPG", Size: 10, Type: ""}, ".jpg,.png", true},
		{FileInfo{Name: "foto", Size: 10, Type: "image/png"}, ".jpg, .png", true},
		{FileInfo{Name: "script.exe", Size: 10, Type: "application/x-msdownload"}, ".pdf,.docx", false},
		{FileInfo{Name: "script.exe", Size: 10, Type: "application/x-msdownload"}, AnyFileType, true},
	}

	for _, tc := range tests {
		if got := ValidateFile(tc.file, 1, tc.allowed).IsValid; got != tc.valid {
			t.Fatalf("ValidateFile(%+v, %q) = %v, want %v", tc.file, tc.allowed, got, tc.valid)
		}
	}
}

func TestValidateFileReturnsFileData(t *testing.T) {
	file := FileInfo{Name: "cv.pdf", Size: 2048, Type: "application/pdf"}
	result := ValidateFile(file, 1, ".pdf")
	if !result.IsValid || result.Data != file {
		t.Fatalf("unexpected result %+v", result)
	}
}
