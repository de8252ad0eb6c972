package osaction

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kk-code-lab/katsearch/internal/debuglog"
	fsutil "github.com/kk-code-lab/katsearch/internal/fs"
	"github.com/kk-code-lab/katsearch/internal/typeid"
)

// Extended attributes used on systems without Finder metadata.
const (
	LabelXattr   = "user.katsearch.label"
	CommentXattr = "user.xdg.comment"
)

const (
	fileManagerDest  = "org.freedesktop.FileManager1"
	fileManagerPath  = "/org/freedesktop/FileManager1"
	previewerDest    = "org.gnome.NautilusPreviewer"
	previewerPath    = "/org/gnome/NautilusPreviewer"
	handlerDBFlightK = "handler-db"
)

// Desktop is the Service backed by the host's desktop tools: xdg-utils, gio
// and D-Bus on Linux, open/osascript/qlmanage on macOS.
type Desktop struct {
	goos     string
	lookPath func(string) (string, error)
	getenv   func(string) string
	// run waits for the command; start launches it and returns.
	run   func(ctx context.Context, name string, args ...string) ([]byte, error)
	start func(name string, args ...string) error

	mimeOf     func(path string) (string, error)
	getXattr   func(path, name string) ([]byte, error)
	setXattr   func(path, name string, value []byte) error
	delXattr   func(path, name string) error
	evalLinks  func(path string) (string, error)
	finderInfo func(path string) (fsutil.FinderInfo, error)

	flight   singleflight.Group
	dbMu     sync.Mutex
	handlers handlerDB

	listenMu  sync.Mutex
	listeners []func(string)
}

var _ Service = (*Desktop)(nil)

// NewDesktop returns a Desktop for the running OS.
func NewDesktop() *Desktop {
	return newDesktop(runtime.GOOS, exec.LookPath)
}

func newDesktop(goos string, lookPath func(string) (string, error)) *Desktop {
	detector := typeid.NewDetector()
	return &Desktop{
		goos:     goos,
		lookPath: lookPath,
		getenv:   os.Getenv,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
		start: func(name string, args ...string) error {
			cmd := exec.Command(name, args...)
			if err := cmd.Start(); err != nil {
				return err
			}
			go func() { _ = cmd.Wait() }()
			return nil
		},
		mimeOf: func(path string) (string, error) {
			entry, err := fsutil.Probe(path)
			if err != nil {
				return "", err
			}
			return detector.MIMEType(entry)
		},
		getXattr:   fsutil.GetXattr,
		setXattr:   fsutil.SetXattr,
		delXattr:   fsutil.RemoveXattr,
		evalLinks:  filepath.EvalSymlinks,
		finderInfo: fsutil.ReadFinderInfo,
	}
}

// OnChanged registers fn to be called for every NotifyChanged.
func (d *Desktop) OnChanged(fn func(path string)) {
	d.listenMu.Lock()
	d.listeners = append(d.listeners, fn)
	d.listenMu.Unlock()
}

func (d *Desktop) isDarwin() bool {
	return strings.EqualFold(d.goos, "darwin")
}

// tool resolves the first available command among candidates.
func (d *Desktop) tool(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		if path, err := d.lookPath(candidate); err == nil && path != "" {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s found", ErrUnsupported, strings.Join(candidates, ", "))
}

func (d *Desktop) runTool(ctx context.Context, candidates []string, args ...string) ([]byte, error) {
	bin, err := d.tool(candidates...)
	if err != nil {
		return nil, err
	}
	debuglog.Logf("osaction: %s %s", bin, strings.Join(args, " "))
	out, err := d.run(ctx, bin, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%s: %w: %s", filepath.Base(bin), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return out, fmt.Errorf("%s: %w", filepath.Base(bin), err)
	}
	return out, nil
}

func (d *Desktop) fileManagerCall(ctx context.Context, method, path string) error {
	_, err := d.runTool(ctx, []string{"dbus-send"},
		"--session", "--print-reply", "--dest="+fileManagerDest, "--type=method_call",
		fileManagerPath, fileManagerDest+"."+method,
		"array:string:"+fileURI(path), "string:")
	return err
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func (d *Desktop) finder(ctx context.Context, script string) ([]byte, error) {
	return d.runTool(ctx, []string{"osascript"}, "-e", script)
}

func finderItem(path string) string {
	return "(POSIX file " + appleScriptString(path) + " as alias)"
}

func (d *Desktop) Open(ctx context.Context, path string) error {
	if d.isDarwin() {
		_, err := d.runTool(ctx, []string{"open"}, path)
		return err
	}
	if _, err := d.tool("xdg-open"); err == nil {
		_, err := d.runTool(ctx, []string{"xdg-open"}, path)
		return err
	}
	_, err := d.runTool(ctx, []string{"gio"}, "open", path)
	return err
}

func (d *Desktop) Reveal(ctx context.Context, path string) error {
	if d.isDarwin() {
		_, err := d.runTool(ctx, []string{"open"}, "-R", path)
		return err
	}
	err := d.fileManagerCall(ctx, "ShowItems", path)
	if err == nil {
		return nil
	}
	debuglog.Logf("osaction: file manager reveal failed, opening parent: %v", err)
	return d.Open(ctx, filepath.Dir(path))
}

func (d *Desktop) RevealPackageContents(ctx context.Context, path string) error {
	if d.isDarwin() {
		_, err := d.runTool(ctx, []string{"open"}, "-a", "Finder", path)
		return err
	}
	if err := d.fileManagerCall(ctx, "ShowFolders", path); err == nil {
		return nil
	}
	return d.Open(ctx, path)
}

func (d *Desktop) OpenWith(ctx context.Context, path, handlerID string) error {
	if handlerID == "" {
		return errors.New("no handler given")
	}
	if d.isDarwin() {
		_, err := d.runTool(ctx, []string{"open"}, "-b", handlerID, path)
		return err
	}
	_, err := d.runTool(ctx, []string{"gtk-launch", "gtk4-launch"}, strings.TrimSuffix(handlerID, ".desktop"), path)
	return err
}

func (d *Desktop) ShowGetInfo(ctx context.Context, path string) error {
	if d.isDarwin() {
		_, err := d.finder(ctx, `tell application "Finder" to open information window of `+finderItem(path))
		return err
	}
	return d.fileManagerCall(ctx, "ShowItemProperties", path)
}

func (d *Desktop) ShowOriginal(ctx context.Context, path string) error {
	if d.isDarwin() {
		if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink == 0 {
			_, err := d.finder(ctx, `tell application "Finder" to reveal original item of `+finderItem(path))
			return err
		}
	}
	target, err := d.evalLinks(path)
	if err != nil {
		return fmt.Errorf("resolve original of %s: %w", path, err)
	}
	return d.Reveal(ctx, target)
}

func (d *Desktop) QuickLook(ctx context.Context, path string) error {
	if d.isDarwin() {
		bin, err := d.tool("qlmanage")
		if err != nil {
			return err
		}
		return d.start(bin, "-p", path)
	}
	_, err := d.runTool(ctx, []string{"dbus-send"},
		"--session", "--print-reply", "--dest="+previewerDest, "--type=method_call",
		previewerPath, previewerDest+".ShowFile",
		"string:"+fileURI(path), "int32:0", "boolean:false")
	return err
}

func (d *Desktop) MoveToTrash(ctx context.Context, path string) error {
	if d.isDarwin() {
		_, err := d.finder(ctx, `tell application "Finder" to delete `+finderItem(path))
		return err
	}
	_, err := d.runTool(ctx, []string{"gio"}, "trash", path)
	return err
}

func (d *Desktop) DefaultHandler(ctx context.Context, path string) (string, error) {
	if d.isDarwin() {
		out, err := d.runTool(ctx, []string{"duti"}, "-x", strings.TrimPrefix(filepath.Ext(path), "."))
		if err != nil {
			return "", err
		}
		// duti prints name, path and bundle ID on separate lines.
		lines := strings.Split(strings.TrimSpace(string(out)), "\n")
		return strings.TrimSpace(lines[len(lines)-1]), nil
	}

	mime, err := d.mimeOf(path)
	if err != nil {
		return "", err
	}
	if out, err := d.runTool(ctx, []string{"xdg-mime"}, "query", "default", mime); err == nil {
		if id := strings.TrimSpace(string(out)); id != "" {
			return id, nil
		}
	}
	all, err := d.handlersFor(mime)
	if err != nil || len(all) == 0 {
		return "", err
	}
	return all[0], nil
}

func (d *Desktop) AllHandlers(ctx context.Context, path string) ([]string, error) {
	if d.isDarwin() {
		return nil, ErrUnsupported
	}
	mime, err := d.mimeOf(path)
	if err != nil {
		return nil, err
	}
	all, err := d.handlersFor(mime)
	if err != nil {
		return nil, err
	}
	def, err := d.DefaultHandler(ctx, path)
	if err != nil || def == "" {
		return all, nil
	}
	out := []string{def}
	for _, id := range all {
		if id != def {
			out = append(out, id)
		}
	}
	return out, nil
}

// handlersFor consults the desktop-entry database, loading it once. Concurrent
// first lookups share a single scan.
func (d *Desktop) handlersFor(mime string) ([]string, error) {
	d.dbMu.Lock()
	db := d.handlers
	d.dbMu.Unlock()
	if db == nil {
		v, err, _ := d.flight.Do(handlerDBFlightK, func() (interface{}, error) {
			loaded := loadHandlerDB(applicationDirs(d.getenv))
			d.dbMu.Lock()
			d.handlers = loaded
			d.dbMu.Unlock()
			return loaded, nil
		})
		if err != nil {
			return nil, err
		}
		db = v.(handlerDB)
	}
	ids := db[strings.ToLower(mime)]
	return append([]string(nil), ids...), nil
}

func (d *Desktop) Label(_ context.Context, path string) (int, error) {
	if d.isDarwin() {
		fi, err := d.finderInfo(path)
		if errors.Is(err, fsutil.ErrNoAttribute) {
			return LabelNone, nil
		}
		if err != nil {
			return 0, err
		}
		return fi.Label(), nil
	}
	raw, err := d.getXattr(path, LabelXattr)
	if errors.Is(err, fsutil.ErrNoAttribute) {
		return LabelNone, nil
	}
	if err != nil {
		return 0, err
	}
	label, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || validLabel(label) != nil {
		return LabelNone, nil
	}
	return label, nil
}

func (d *Desktop) SetLabel(_ context.Context, path string, label int) error {
	if err := validLabel(label); err != nil {
		return err
	}
	if d.isDarwin() {
		fi, err := d.finderInfo(path)
		if err != nil && !errors.Is(err, fsutil.ErrNoAttribute) {
			return err
		}
		return d.setXattr(path, fsutil.FinderInfoXattr, fi.WithLabel(label).Bytes())
	}
	if label == LabelNone {
		if err := d.delXattr(path, LabelXattr); err != nil && !errors.Is(err, fsutil.ErrNoAttribute) {
			return err
		}
		return nil
	}
	return d.setXattr(path, LabelXattr, []byte(strconv.Itoa(label)))
}

func (d *Desktop) FinderComment(ctx context.Context, path string) (string, error) {
	if d.isDarwin() {
		out, err := d.finder(ctx, `tell application "Finder" to get comment of `+finderItem(path))
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(out), "\n"), nil
	}
	raw, err := d.getXattr(path, CommentXattr)
	if errors.Is(err, fsutil.ErrNoAttribute) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (d *Desktop) SetFinderComment(ctx context.Context, path, comment string) error {
	if d.isDarwin() {
		_, err := d.finder(ctx, `tell application "Finder" to set comment of `+finderItem(path)+` to `+appleScriptString(comment))
		return err
	}
	if comment == "" {
		if err := d.delXattr(path, CommentXattr); err != nil && !errors.Is(err, fsutil.ErrNoAttribute) {
			return err
		}
		return nil
	}
	return d.setXattr(path, CommentXattr, []byte(comment))
}

func (d *Desktop) NotifyChanged(path string) {
	debuglog.Logf("osaction: changed %s", path)
	d.listenMu.Lock()
	listeners := slices.Clone(d.listeners)
	d.listenMu.Unlock()
	for _, fn := range listeners {
		fn(path)
	}
}
