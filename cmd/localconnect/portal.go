package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/localconnect/directory/infra/supabase"
	"github.com/localconnect/directory/internal/gallery"
	"github.com/localconnect/directory/internal/profile"
)

func portalUsage() error {
	fmt.Fprintf(os.Stderr, `Usage: localconnect portal <subcommand> [flags]

Subcommands:
  profile                        Show your business profile
  save -name <name> [flags]      Create or update your profile
  upload <file> [file...]        Add images to your gallery
  remove-image <image-id>        Remove one gallery image
  delete -yes                    Delete your profile, gallery, and session
`)
	return fmt.Errorf("portal: missing or unknown subcommand")
}

// portalSession is a signed-in owner with the coordinator and synchronizer
// wired for their business.
type portalSession struct {
	app   *app
	coord *profile.Coordinator
	sync  *gallery.Synchronizer
}

func signIn(ctx context.Context, a *app, email, password string) (*portalSession, error) {
	if email == "" {
		email = os.Getenv("LOCALCONNECT_EMAIL")
	}
	if password == "" {
		password = os.Getenv("LOCALCONNECT_PASSWORD")
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("sign-in required: pass -email/-password or set LOCALCONNECT_EMAIL and LOCALCONNECT_PASSWORD")
	}

	session, err := a.client.Auth().SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if session.User == nil {
		return nil, fmt.Errorf("sign in: no user in session")
	}

	a.client.Auth().OnStateChange(func(s *supabase.Session) {
		if s == nil {
			a.log.Infof("session ended for %s", email)
		}
	})

	sync := gallery.New(a.images, a.objects, a.log)
	coord := profile.New(session.User.ID, a.businesses, a.objects, sync, a.client.Auth(), a.log)
	if err := coord.Load(ctx); err != nil {
		return nil, err
	}
	return &portalSession{app: a, coord: coord, sync: sync}, nil
}

func runPortal(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return portalUsage()
	}

	sub := args[0]
	fs := flag.NewFlagSet("portal "+sub, flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	email := fs.String("email", "", "Owner account email")
	password := fs.String("password", "", "Owner account password")

	var name, category, description, address, phone *string
	var confirm *bool
	switch sub {
	case "save":
		name = fs.String("name", "", "Business name (required)")
		category = fs.String("category", "", "Business category")
		description = fs.String("description", "", "Business description")
		address = fs.String("address", "", "Business address")
		phone = fs.String("phone", "", "Business phone")
	case "delete":
		confirm = fs.Bool("yes", false, "Confirm deletion")
	case "profile", "upload", "remove-image":
	default:
		return portalUsage()
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	ps, err := signIn(ctx, a, *email, *password)
	if err != nil {
		return err
	}

	switch sub {
	case "profile":
		return ps.showProfile()
	case "save":
		return ps.saveProfile(ctx, profile.Details{
			Name:        *name,
			Category:    *category,
			Description: *description,
			Address:     *address,
			Phone:       *phone,
		})
	case "upload":
		return ps.upload(ctx, fs.Args())
	case "remove-image":
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: localconnect portal remove-image <image-id>")
		}
		return ps.removeImage(ctx, fs.Arg(0))
	case "delete":
		return ps.deleteProfile(ctx, *confirm)
	}
	return nil
}

func (ps *portalSession) showProfile() error {
	b := ps.coord.Current()
	if b == nil {
		fmt.Println("No business profile yet. Create one with: localconnect portal save -name <name>")
		return nil
	}

	fmt.Printf("%s (%s)\n", b.Name, b.ID)
	if b.Category != "" {
		fmt.Printf("Category:    %s\n", b.Category)
	}
	if b.Description != "" {
		fmt.Printf("Description: %s\n", b.Description)
	}
	if b.Address != "" {
		fmt.Printf("Address:     %s\n", b.Address)
	}
	if b.Phone != "" {
		fmt.Printf("Phone:       %s\n", b.Phone)
	}

	imgs := ps.sync.Images()
	fmt.Printf("Gallery (%d images):\n", len(imgs))
	for _, img := range imgs {
		fmt.Printf("  %s  %s\n", img.ID, ps.sync.PublicURL(img.Path))
	}
	return nil
}

func (ps *portalSession) saveProfile(ctx context.Context, d profile.Details) error {
	saved, err := ps.coord.SaveDetails(ctx, d)
	if err != nil {
		return err
	}
	fmt.Printf("Profile saved: %s (%s)\n", saved.Name, saved.ID)
	return nil
}

func (ps *portalSession) upload(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("usage: localconnect portal upload <file> [file...]")
	}
	b := ps.coord.Current()
	if b == nil {
		return fmt.Errorf("create a business profile before uploading images")
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		img, err := ps.sync.AddImage(ctx, b.ID, gallery.FileData{
			Name: filepath.Base(file),
			Data: data,
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", file, err)
		}
		fmt.Printf("Uploaded %s: %s\n", file, ps.sync.PublicURL(img.Path))
	}
	return nil
}

func (ps *portalSession) removeImage(ctx context.Context, imageID string) error {
	for _, img := range ps.sync.Images() {
		if img.ID == imageID {
			if err := ps.sync.RemoveImage(ctx, img); err != nil {
				return err
			}
			fmt.Printf("Removed image %s.\n", imageID)
			return nil
		}
	}
	return fmt.Errorf("no gallery image with id %s", imageID)
}

func (ps *portalSession) deleteProfile(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("deletion removes your profile, all gallery images, and signs you out; pass -yes to confirm")
	}
	if err := ps.coord.Delete(ctx); err != nil {
		return err
	}
	fmt.Println("Profile deleted. You have been signed out.")
	return nil
}
