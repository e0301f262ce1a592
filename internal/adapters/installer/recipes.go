// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

package installer

import (
	"fmt"
	"slices"

	adapterplatform "github.com/janderssonse/devsetup/internal/adapters/platform"
	"github.com/janderssonse/devsetup/internal/domain"
)

const (
	cranUbuntuKey    = "https://cloud.r-project.org/bin/linux/ubuntu/marutter_pubkey.asc"
	cranUbuntuRepo   = "https://cloud.r-project.org/bin/linux/ubuntu"
	microsoftKey     = "https://packages.microsoft.com/keys/microsoft.asc"
	microsoftKeyRing = "/usr/share/keyrings/packages.microsoft.gpg"
	vscodeAptList    = "/etc/apt/sources.list.d/vscode.list"
	vscodeYumRepo    = "/etc/yum.repos.d/vscode.repo"
)

// Step is one command of a recipe.
type Step struct {
	Sudo bool
	Name string
	Args []string
}

// Command returns the step as a runnable argument vector, with sudo prefixed when needed.
func (s Step) Command() []string {
	cmd := append([]string{s.Name}, s.Args...)
	if s.Sudo {
		return append([]string{"sudo"}, cmd...)
	}

	return cmd
}

// String renders the step as a shell-quoted command line.
func (s Step) String() string {
	cmd := s.Command()

	return adapterplatform.FormatCommand(cmd[0], cmd[1:]...)
}

// recipe builds the steps for one target on one platform.
type recipe func(env recipeEnv) ([]Step, error)

// recipeEnv is what a recipe may depend on besides the platform itself.
type recipeEnv struct {
	facts    domain.SystemFacts
	aptProxy []string
	console  string
}

func sudo(name string, args ...string) Step {
	return Step{Sudo: true, Name: name, Args: args}
}

func user(name string, args ...string) Step {
	return Step{Name: name, Args: args}
}

func shell(script string) Step {
	return sudo("sh", "-c", script)
}

func aptGet(env recipeEnv, args ...string) Step {
	return sudo("apt-get", slices.Concat(env.aptProxy, args)...)
}

func aptInstall(pkgs ...string) recipe {
	return func(env recipeEnv) ([]Step, error) {
		return []Step{
			aptGet(env, "update"),
			aptGet(env, append([]string{"install", "-y"}, pkgs...)...),
		}, nil
	}
}

func dnfInstall(pkgs ...string) recipe {
	return fixed(sudo("dnf", append([]string{"install", "-y"}, pkgs...)...))
}

func pacmanInstall(pkgs ...string) recipe {
	return fixed(sudo("pacman", append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)...))
}

func brewInstall(args ...string) recipe {
	return fixed(user("brew", append([]string{"install"}, args...)...))
}

func chocoInstall(pkgs ...string) recipe {
	return fixed(user("choco", append([]string{"install", "-y"}, pkgs...)...))
}

func fixed(steps ...Step) recipe {
	return func(recipeEnv) ([]Step, error) {
		return slices.Clone(steps), nil
	}
}

// then appends the steps of next after those of first.
func then(first, next recipe) recipe {
	return func(env recipeEnv) ([]Step, error) {
		a, err := first(env)
		if err != nil {
			return nil, err
		}

		b, err := next(env)
		if err != nil {
			return nil, err
		}

		return append(a, b...), nil
	}
}

func pipxConsole(env recipeEnv) ([]Step, error) {
	return []Step{user("pipx", "install", env.console)}, nil
}

// debianR installs R from the distribution, adding the CRAN apt source first on Ubuntu
// releases where the codename is known.
func debianR(env recipeEnv) ([]Step, error) {
	steps := []Step{
		aptGet(env, "update"),
		aptGet(env, "install", "-y", "--no-install-recommends", "software-properties-common", "dirmngr", "wget"),
	}

	if env.facts.Distro == "ubuntu" && env.facts.Codename != "" {
		steps = append(steps,
			shell("wget -qO- "+cranUbuntuKey+" | tee /etc/apt/trusted.gpg.d/cran_ubuntu_key.asc > /dev/null"),
			sudo("add-apt-repository", "-y", fmt.Sprintf("deb %s %s-cran40/", cranUbuntuRepo, env.facts.Codename)),
			aptGet(env, "update"),
		)
	}

	return append(steps, aptGet(env, "install", "-y", "r-base", "r-base-dev")), nil
}

func debianEditor(env recipeEnv) ([]Step, error) {
	return []Step{
		aptGet(env, "update"),
		aptGet(env, "install", "-y", "wget", "gpg", "apt-transport-https"),
		shell("wget -qO- " + microsoftKey + " | gpg --dearmor > " + microsoftKeyRing),
		shell("echo 'deb [arch=amd64,arm64 signed-by=" + microsoftKeyRing +
			"] https://packages.microsoft.com/repos/code stable main' > " + vscodeAptList),
		aptGet(env, "update"),
		aptGet(env, "install", "-y", "code"),
	}, nil
}

func fedoraEditor(recipeEnv) ([]Step, error) {
	return []Step{
		sudo("rpm", "--import", microsoftKey),
		shell("printf '[code]\\nname=Visual Studio Code\\nbaseurl=https://packages.microsoft.com/yumrepos/vscode\\n" +
			"enabled=1\\ngpgcheck=1\\ngpgkey=" + microsoftKey + "\\n' > " + vscodeYumRepo),
		sudo("dnf", "install", "-y", "code"),
	}, nil
}

func windowsConsole(env recipeEnv) ([]Step, error) {
	return []Step{user("py", "-m", "pip", "install", "--user", env.console)}, nil
}

// platformManager is the package manager a platform's recipes need on PATH.
var platformManager = map[domain.Platform]string{ //nolint:gochecknoglobals
	domain.PlatformDebian:  "apt-get",
	domain.PlatformFedora:  "dnf",
	domain.PlatformArch:    "pacman",
	domain.PlatformMacOS:   "brew",
	domain.PlatformWindows: "choco",
}

// recipes is the dispatch table. Supporting another platform is a new entry here
// and in domain's distribution map.
func recipes() map[domain.Platform]map[domain.Target]recipe {
	return map[domain.Platform]map[domain.Target]recipe{
		domain.PlatformDebian: {
			domain.TargetPython:  aptInstall("python3", "python3-pip", "python3-venv"),
			domain.TargetR:       debianR,
			domain.TargetEditor:  debianEditor,
			domain.TargetConsole: then(aptInstall("pipx"), pipxConsole),
		},
		domain.PlatformFedora: {
			domain.TargetPython:  dnfInstall("python3", "python3-pip"),
			domain.TargetR:       dnfInstall("R"),
			domain.TargetEditor:  fedoraEditor,
			domain.TargetConsole: then(dnfInstall("pipx"), pipxConsole),
		},
		domain.PlatformArch: {
			domain.TargetPython:  pacmanInstall("python", "python-pip"),
			domain.TargetR:       pacmanInstall("r"),
			domain.TargetEditor:  pacmanInstall("code"),
			domain.TargetConsole: then(pacmanInstall("python-pipx"), pipxConsole),
		},
		domain.PlatformMacOS: {
			domain.TargetPython:  brewInstall("python"),
			domain.TargetR:       brewInstall("--cask", "r"),
			domain.TargetEditor:  brewInstall("--cask", "visual-studio-code"),
			domain.TargetConsole: then(brewInstall("pipx"), pipxConsole),
		},
		domain.PlatformWindows: {
			domain.TargetPython:  chocoInstall("python"),
			domain.TargetR:       chocoInstall("r.project"),
			domain.TargetEditor:  chocoInstall("vscode"),
			domain.TargetConsole: windowsConsole,
		},
	}
}
