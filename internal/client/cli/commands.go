package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/filesmanager/internal/client/client"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/filex"
)

// imageExtensions decide whether an upload is sent as an image.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
}

// report prints err in a user friendly form and returns it.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "error: server unavailable")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "error: unauthorized")
	default:
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
	return err
}

func (a *App) credentials() (string, []byte, error) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	if email == "" {
		return "", nil, fmt.Errorf("email is required")
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Register(ctx, email, password)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Registered %s (id %s), you can login now\n", u.Email, u.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, email, password); err != nil {
		return a.report(err)
	}

	a.mu.Lock()
	a.userName = email
	a.cwd = ""
	a.mu.Unlock()

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)

	a.mu.Lock()
	a.userName = ""
	a.cwd = ""
	a.mu.Unlock()

	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Profile(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "id: %s\nemail: %s\n", u.ID, u.Email)
	return nil
}

func (a *App) currentFolder() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cwd
}

func (a *App) setCurrentFolder(id string) {
	a.mu.Lock()
	a.cwd = id
	a.mu.Unlock()
}

func (a *App) Mkdir(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")

	f, err := a.api.CreateFile(ctx, client.NewFile{Name: name, Type: client.TypeFolder, ParentID: a.currentFolder()})
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Created folder %s (id %s)\n", f.Name, f.ID)
	return nil
}

// Upload sends a local file into the current folder. Images are detected by
// extension; a trailing "public" argument publishes the file on creation.
func (a *App) Upload(ctx context.Context, args []string) error {
	path := args[0]
	public := len(args) > 1 && args[1] == "public"

	data, err := os.ReadFile(path)
	if err != nil {
		return a.report(err)
	}

	t := client.TypeFile
	if imageExtensions[strings.ToLower(filepath.Ext(path))] {
		t = client.TypeImage
	}

	f, err := a.api.CreateFile(ctx, client.NewFile{
		Name:     filepath.Base(path),
		Type:     t,
		ParentID: a.currentFolder(),
		IsPublic: public,
		Data:     data,
	})
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Uploaded %s as %s (id %s)\n", f.Name, f.Type, f.ID)
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	page := 0
	if len(args) > 0 {
		p, err := strconv.Atoi(args[0])
		if err != nil {
			return a.report(fmt.Errorf("invalid page %q", args[0]))
		}
		page = p
	}

	parent := a.currentFolder()
	if parent == "" {
		parent = common.RootParentID
	}

	files, err := a.api.ListFiles(ctx, parent, page)
	if err != nil {
		return a.report(err)
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "(empty)")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tPUBLIC\tNAME")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", f.ID, f.Type, f.IsPublic, f.Name)
	}
	return tw.Flush()
}

// Cd changes the current folder: "/" goes to the root, ".." to the parent.
func (a *App) Cd(ctx context.Context, args []string) error {
	target := args[0]

	switch target {
	case "/":
		a.setCurrentFolder("")
		return nil
	case "..":
		cwd := a.currentFolder()
		if cwd == "" {
			return nil
		}
		f, err := a.api.GetFile(ctx, cwd)
		if err != nil {
			return a.report(err)
		}
		parent := f.ParentID
		if parent == common.RootParentID {
			parent = ""
		}
		a.setCurrentFolder(parent)
		return nil
	}

	f, err := a.api.GetFile(ctx, target)
	if err != nil {
		return a.report(err)
	}
	if f.Type != client.TypeFolder {
		return a.report(fmt.Errorf("%s is not a folder", f.Name))
	}
	a.setCurrentFolder(f.ID)
	return nil
}

func (a *App) Publish(ctx context.Context, args []string) error {
	return a.setPublic(ctx, args[0], true)
}

func (a *App) Unpublish(ctx context.Context, args []string) error {
	return a.setPublic(ctx, args[0], false)
}

func (a *App) setPublic(ctx context.Context, id string, public bool) error {
	f, err := a.api.SetPublic(ctx, id, public)
	if err != nil {
		return a.report(err)
	}
	state := "private"
	if f.IsPublic {
		state = "public"
	}
	fmt.Fprintf(a.out, "%s is now %s\n", f.ID, state)
	return nil
}

// Get downloads content into the download directory. Anonymous users can
// fetch public files; the saved name then falls back to the id.
func (a *App) Get(ctx context.Context, args []string) error {
	id := args[0]
	size := ""
	if len(args) > 1 {
		size = args[1]
	}

	content, err := a.api.Download(ctx, id, size)
	if err != nil {
		return a.report(err)
	}

	name := id
	if a.isLoggedIn() {
		if f, err := a.api.GetFile(ctx, id); err == nil {
			name = f.Name
		}
	}
	if size != "" {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + size + ext
	}

	dir, err := filex.EnsureSubDir(a.config.DownloadDir)
	if err != nil {
		return a.report(err)
	}
	path, err := filex.WriteUnique(dir, name, content.Data)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Saved %d bytes (%s) to %s\n", len(content.Data), content.MimeType, path)
	return nil
}
