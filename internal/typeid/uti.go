package typeid

import "strings"

// Unknown is the sentinel rendered for classifications that cannot be made.
const Unknown = "?"

// Well-known identifiers used outside the tables.
const (
	utiItem           = "public.item"
	utiData           = "public.data"
	utiFolder         = "public.folder"
	utiDirectory      = "public.directory"
	utiSymlink        = "public.symlink"
	utiVolume         = "public.volume"
	utiPackage        = "com.apple.package"
	utiApplication    = "com.apple.application-bundle"
	utiUnixExecutable = "public.unix-executable"
	utiPlainText      = "public.plain-text"
)

var extensionUTIs = map[string]string{
	".txt":      utiPlainText,
	".text":     utiPlainText,
	".md":       "net.daringfireball.markdown",
	".markdown": "net.daringfireball.markdown",
	".rtf":      "public.rtf",
	".html":     "public.html",
	".htm":      "public.html",
	".xml":      "public.xml",
	".json":     "public.json",
	".yaml":     "public.yaml",
	".yml":      "public.yaml",
	".csv":      "public.comma-separated-values-text",
	".c":        "public.c-source",
	".h":        "public.c-header",
	".m":        "public.objective-c-source",
	".cpp":      "public.c-plus-plus-source",
	".swift":    "public.swift-source",
	".py":       "public.python-script",
	".sh":       "public.shell-script",
	".go":       "public.source-code",
	".js":       "com.netscape.javascript-source",
	".png":      "public.png",
	".jpg":      "public.jpeg",
	".jpeg":     "public.jpeg",
	".gif":      "com.compuserve.gif",
	".tif":      "public.tiff",
	".tiff":     "public.tiff",
	".heic":     "public.heic",
	".bmp":      "com.microsoft.bmp",
	".svg":      "public.svg-image",
	".ico":      "com.microsoft.ico",
	".pdf":      "com.adobe.pdf",
	".zip":      "public.zip-archive",
	".gz":       "org.gnu.gnu-zip-archive",
	".tar":      "public.tar-archive",
	".dmg":      "com.apple.disk-image-udif",
	".mp3":      "public.mp3",
	".m4a":      "com.apple.m4a-audio",
	".wav":      "com.microsoft.waveform-audio",
	".aiff":     "public.aiff-audio",
	".mp4":      "public.mpeg-4",
	".mov":      "com.apple.quicktime-movie",
	".avi":      "public.avi",
	".doc":      "com.microsoft.word.doc",
	".docx":     "org.openxmlformats.wordprocessingml.document",
	".xls":      "com.microsoft.excel.xls",
	".xlsx":     "org.openxmlformats.spreadsheetml.sheet",
	".desktop":  "org.freedesktop.desktop-entry",
}

var mimeUTIs = map[string]string{
	"text/plain":                utiPlainText,
	"text/html":                 "public.html",
	"text/xml":                  "public.xml",
	"application/xml":           "public.xml",
	"application/json":          "public.json",
	"application/pdf":           "com.adobe.pdf",
	"application/zip":           "public.zip-archive",
	"application/gzip":          "org.gnu.gnu-zip-archive",
	"application/x-tar":         "public.tar-archive",
	"image/png":                 "public.png",
	"image/jpeg":                "public.jpeg",
	"image/gif":                 "com.compuserve.gif",
	"image/tiff":                "public.tiff",
	"image/svg+xml":             "public.svg-image",
	"audio/mpeg":                "public.mp3",
	"video/mp4":                 "public.mpeg-4",
	"video/quicktime":           "com.apple.quicktime-movie",
	"application/x-executable":  utiUnixExecutable,
	"application/x-mach-binary": utiUnixExecutable,
	"application/x-elf":         utiUnixExecutable,
	"application/octet-stream":  utiData,
}

// utiParents lists the conformance parents of each identifier.
var utiParents = map[string][]string{
	utiPlainText:                                   {"public.text"},
	"net.daringfireball.markdown":                  {utiPlainText},
	"public.rtf":                                   {"public.text"},
	"public.html":                                  {"public.text"},
	"public.xml":                                   {"public.text"},
	"public.json":                                  {"public.text"},
	"public.yaml":                                  {"public.text"},
	"public.comma-separated-values-text":           {"public.text"},
	"public.source-code":                           {utiPlainText},
	"public.c-source":                              {"public.source-code"},
	"public.c-header":                              {"public.source-code"},
	"public.objective-c-source":                    {"public.source-code"},
	"public.c-plus-plus-source":                    {"public.source-code"},
	"public.swift-source":                          {"public.source-code"},
	"public.script":                                {"public.source-code"},
	"public.python-script":                         {"public.script"},
	"public.shell-script":                          {"public.script"},
	"com.netscape.javascript-source":               {"public.script"},
	"public.text":                                  {utiData, "public.content"},
	"public.png":                                   {"public.image"},
	"public.jpeg":                                  {"public.image"},
	"com.compuserve.gif":                           {"public.image"},
	"public.tiff":                                  {"public.image"},
	"public.heic":                                  {"public.image"},
	"com.microsoft.bmp":                            {"public.image"},
	"com.microsoft.ico":                            {"public.image"},
	"public.svg-image":                             {"public.image", "public.xml"},
	"public.image":                                 {utiData, "public.content"},
	"com.adobe.pdf":                                {utiData, "public.composite-content"},
	"public.composite-content":                     {"public.content"},
	"public.zip-archive":                           {"public.archive"},
	"org.gnu.gnu-zip-archive":                      {"public.archive"},
	"public.tar-archive":                           {"public.archive"},
	"com.apple.disk-image-udif":                    {"public.disk-image"},
	"public.disk-image":                            {"public.archive"},
	"public.archive":                               {utiData},
	"public.mp3":                                   {"public.audio"},
	"com.apple.m4a-audio":                          {"public.audio"},
	"com.microsoft.waveform-audio":                 {"public.audio"},
	"public.aiff-audio":                            {"public.audio"},
	"public.audio":                                 {"public.audiovisual-content"},
	"public.mpeg-4":                                {"public.movie"},
	"com.apple.quicktime-movie":                    {"public.movie"},
	"public.avi":                                   {"public.movie"},
	"public.movie":                                 {"public.audiovisual-content"},
	"public.audiovisual-content":                   {utiData, "public.content"},
	"com.microsoft.word.doc":                       {utiData, "public.composite-content"},
	"org.openxmlformats.wordprocessingml.document": {utiData, "public.composite-content"},
	"com.microsoft.excel.xls":                      {utiData, "public.composite-content"},
	"org.openxmlformats.spreadsheetml.sheet":       {utiData, "public.composite-content"},
	"org.freedesktop.desktop-entry":                {utiPlainText},
	utiUnixExecutable:                              {utiData, "public.executable"},
	utiApplication:                                 {"com.apple.application", utiPackage},
	"com.apple.application":                        {"public.executable"},
	utiPackage:                                     {utiDirectory},
	utiFolder:                                      {utiDirectory},
	utiVolume:                                      {utiFolder},
	utiDirectory:                                   {utiItem},
	utiSymlink:                                     {utiItem},
	utiData:                                        {utiItem},
}

var utiKinds = map[string]string{
	utiPlainText:                         "Plain Text Document",
	"net.daringfireball.markdown":        "Markdown Document",
	"public.rtf":                         "Rich Text Document",
	"public.html":                        "HTML text",
	"public.xml":                         "XML text",
	"public.json":                        "JSON Document",
	"public.yaml":                        "YAML Document",
	"public.comma-separated-values-text": "CSV Document",
	"public.source-code":                 "Source Code",
	"public.c-source":                    "C Source File",
	"public.c-header":                    "C Header Source File",
	"public.python-script":               "Python Script",
	"public.shell-script":                "Shell Script",
	"public.png":                         "PNG image",
	"public.jpeg":                        "JPEG image",
	"com.compuserve.gif":                 "GIF image",
	"public.tiff":                        "TIFF image",
	"public.svg-image":                   "SVG image",
	"com.adobe.pdf":                      "PDF Document",
	"public.zip-archive":                 "ZIP archive",
	"org.gnu.gnu-zip-archive":            "gzip compressed archive",
	"public.tar-archive":                 "tar archive",
	"com.apple.disk-image-udif":          "Disk Image",
	"public.mp3":                         "MP3 audio",
	"public.mpeg-4":                      "MPEG-4 movie",
	"com.apple.quicktime-movie":          "QuickTime movie",
	"org.freedesktop.desktop-entry":      "Desktop Entry",
	utiUnixExecutable:                    "Unix Executable File",
	utiApplication:                       "Application",
	utiPackage:                           "Package",
	utiFolder:                            "Folder",
	utiVolume:                            "Volume",
	utiSymlink:                           "Symbolic Link",
	utiData:                              "Document",
}

// ConformsTo reports whether uti equals parent or inherits from it.
func ConformsTo(uti, parent string) bool {
	if uti == "" || parent == "" {
		return false
	}
	seen := map[string]bool{}
	stack := []string{uti}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if strings.EqualFold(current, parent) {
			return true
		}
		if seen[current] {
			continue
		}
		seen[current] = true
		stack = append(stack, utiParents[current]...)
	}
	return false
}
