package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/opmodel/converge/internal/component"
	"github.com/opmodel/converge/internal/output"
)

// PackageType installs an operating system package.
var PackageType = component.Type{
	Name:        "package",
	Namevar:     "name",
	Description: "OS package, installed through the platform's package manager",
	New:         decoded[Package](),
}

// Package declares an installed OS package. The work is done by the platform
// specialization registered for the environment's platform; on platforms
// without one the package is treated as current.
type Package struct {
	component.Base

	Name    string `attr:"name"`
	Version string `attr:"version"`
}

func init() {
	component.RegisterPlatform[*Package]("debian", func() component.Component { return &aptPackage{} })
	component.RegisterPlatform[*Package]("darwin", func() component.Component { return &brewPackage{} })
}

// declared returns the Package a platform specialization was attached to.
func declared(b *component.Base) (*Package, error) {
	pkg, ok := b.Parent().(*Package)
	if !ok {
		return nil, fmt.Errorf("package specialization attached to %T", b.Parent())
	}
	return pkg, nil
}

// aptPackage installs packages with apt-get on Debian-like hosts.
type aptPackage struct {
	component.Base
	pkg *Package
}

func (a *aptPackage) Configure() error {
	pkg, err := declared(&a.Base)
	a.pkg = pkg
	return err
}

func (a *aptPackage) Verify(ctx context.Context) (component.Status, error) {
	out, err := a.Cmd(ctx, "dpkg-query -W -f='${Status} ${Version}' "+shellQuote(a.pkg.Name)+" 2>/dev/null || true")
	if err != nil {
		return component.Current, err
	}
	fields := strings.Fields(string(out))
	if len(fields) < 4 || strings.Join(fields[:3], " ") != "install ok installed" {
		return component.NeedsUpdate, nil
	}
	if a.pkg.Version != "" && fields[3] != a.pkg.Version {
		return component.NeedsUpdate, nil
	}
	return component.Current, nil
}

func (a *aptPackage) Update(ctx context.Context) error {
	spec := a.pkg.Name
	if a.pkg.Version != "" {
		spec += "=" + a.pkg.Version
	}
	output.Debug("installing package", "manager", "apt", "package", spec)
	_, err := a.Cmd(ctx, "DEBIAN_FRONTEND=noninteractive apt-get install -y "+shellQuote(spec))
	return err
}

// brewPackage installs packages with Homebrew on macOS hosts.
type brewPackage struct {
	component.Base
	pkg *Package
}

func (b *brewPackage) Configure() error {
	pkg, err := declared(&b.Base)
	b.pkg = pkg
	return err
}

func (b *brewPackage) Verify(ctx context.Context) (component.Status, error) {
	out, err := b.Cmd(ctx, "brew list --versions "+shellQuote(b.pkg.Name)+" || true")
	if err != nil {
		return component.Current, err
	}
	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return component.NeedsUpdate, nil
	}
	if b.pkg.Version != "" && !containsString(fields[1:], b.pkg.Version) {
		return component.NeedsUpdate, nil
	}
	return component.Current, nil
}

func (b *brewPackage) Update(ctx context.Context) error {
	spec := b.pkg.Name
	if b.pkg.Version != "" {
		spec += "@" + b.pkg.Version
	}
	output.Debug("installing package", "manager", "brew", "package", spec)
	_, err := b.Cmd(ctx, "brew install "+shellQuote(spec))
	return err
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
