package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// AnyFileType disables the type check in ValidateFile.
const AnyFileType = "*"

type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// ValidateFile checks an upload against a size ceiling in mebibytes and a
// comma separated list of extensions or MIME fragments.
func ValidateFile(file FileInfo, maxSizeMB float64, allowedTypes string) Result {
	maxSizeBytes := maxSizeMB * 1024 * 1024
	if float64(file.Size) > maxSizeBytes {
		return formatFailure(fmt.Sprintf(
			"Arquivo muito grande (%s). Máximo: %sMB",
			humanize.IBytes(uint64(max(file.Size, 0))),
			strconv.FormatFloat(maxSizeMB, 'f', -1, 64),
		))
	}

	if allowedTypes != AnyFileType && !fileTypeAllowed(file, allowedTypes) {
		return formatFailure("Tipo de arquivo não permitido. Permitidos: " + allowedTypes)
	}

	return valid("Arquivo válido", file)
}

func fileTypeAllowed(file FileInfo, allowedTypes string) bool {
	extension := "." + strings.ToLower(file.Name[strings.LastIndex(file.Name, ".")+1:])
	for _, allowed := range strings.Split(allowedTypes, ",") {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if allowed == extension {
			return true
		}
		if fragment := strings.Replace(allowed, ".", "", 1); fragment != "" && strings.Contains(file.Type, fragment) {
			return true
		}
	}
	return false
}
