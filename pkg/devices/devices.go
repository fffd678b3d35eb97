package devices

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/altair-hq/igclient/pkg/signer"
)

// Package devices contains the phone profiles the client impersonates.

// Profile describes one android handset fingerprint. The remote service
// correlates every field through the rendered user-agent, so values come
// from real builds, never invented per-field.
type Profile struct {
	ID             string `json:"id" yaml:"id"`
	Manufacturer   string `json:"manufacturer" yaml:"manufacturer"`
	Model          string `json:"model" yaml:"model"`
	Device         string `json:"device" yaml:"device"`
	CPU            string `json:"cpu" yaml:"cpu"`
	AndroidVersion int    `json:"android_version" yaml:"android_version"`
	AndroidRelease string `json:"android_release" yaml:"android_release"`
	DPI            string `json:"dpi" yaml:"dpi"`
	Resolution     string `json:"resolution" yaml:"resolution"`
}

// UserAgent renders the mobile user-agent string for this profile under the
// fixed app build constants.
func (p Profile) UserAgent() string {
	return fmt.Sprintf("Instagram %s Android (%d/%s; %s; %s; %s; %s; %s; %s; %s; %s)",
		signer.AppVersion,
		p.AndroidVersion, p.AndroidRelease,
		p.DPI, p.Resolution,
		p.Manufacturer, p.Model, p.Device, p.CPU,
		signer.AppLocale, signer.AppVersionCode,
	)
}

type registry struct {
	Devices []Profile `json:"devices" yaml:"devices"`
}

var (
	regMu      sync.RWMutex
	currentReg registry
	profileIdx map[string]Profile
)

// builtin ships a small catalog so callers work without a devices file.
var builtin = []Profile{
	{
		ID:             "samsung-sm-g950f",
		Manufacturer:   "samsung",
		Model:          "SM-G950F",
		Device:         "dreamlte",
		CPU:            "samsungexynos8895",
		AndroidVersion: 26,
		AndroidRelease: "8.0.0",
		DPI:            "480dpi",
		Resolution:     "1080x2220",
	},
	{
		ID:             "oneplus-a6013",
		Manufacturer:   "OnePlus",
		Model:          "ONEPLUS A6013",
		Device:         "OnePlus6T",
		CPU:            "qcom",
		AndroidVersion: 29,
		AndroidRelease: "10",
		DPI:            "420dpi",
		Resolution:     "1080x2260",
	},
	{
		ID:             "xiaomi-mi-9t",
		Manufacturer:   "Xiaomi",
		Model:          "Mi 9T",
		Device:         "davinci",
		CPU:            "qcom",
		AndroidVersion: 29,
		AndroidRelease: "10",
		DPI:            "440dpi",
		Resolution:     "1080x2130",
	},
}

func init() {
	resetToBuiltin()
}

func resetToBuiltin() {
	idx := make(map[string]Profile, len(builtin))
	for _, p := range builtin {
		idx[p.ID] = p
	}
	regMu.Lock()
	currentReg = registry{Devices: append([]Profile(nil), builtin...)}
	profileIdx = idx
	regMu.Unlock()
}

// Profiles returns a copy of the currently loaded device catalog.
func Profiles() []Profile {
	regMu.RLock()
	defer regMu.RUnlock()

	out := make([]Profile, len(currentReg.Devices))
	copy(out, currentReg.Devices)
	return out
}

// ProfileByID returns the profile for the given id, if loaded.
func ProfileByID(id string) (Profile, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, false
	}

	regMu.RLock()
	defer regMu.RUnlock()

	p, ok := profileIdx[id]
	return p, ok
}

// ProfileForSeed deterministically picks a profile from the catalog for the
// given seed, so one account always presents the same handset.
func ProfileForSeed(seed string) Profile {
	regMu.RLock()
	defer regMu.RUnlock()

	h := fnv.New32a()
	h.Write([]byte(seed))
	return currentReg.Devices[int(h.Sum32())%len(currentReg.Devices)]
}

// LoadProfiles replaces the builtin catalog with the devices file at path.
func LoadProfiles(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("devices file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read devices file: %w", err)
	}

	var reg registry
	if err := yaml.Unmarshal(raw, &reg); err != nil {
		return fmt.Errorf("parse devices yaml: %w", err)
	}
	if len(reg.Devices) == 0 {
		return errors.New("devices file contains no device entries")
	}

	idx := make(map[string]Profile, len(reg.Devices))
	for i := range reg.Devices {
		p := sanitizeProfile(reg.Devices[i])
		if err := validateProfile(p); err != nil {
			return fmt.Errorf("device[%d]: %w", i, err)
		}
		if _, exists := idx[p.ID]; exists {
			return fmt.Errorf("duplicate device id %q", p.ID)
		}
		reg.Devices[i] = p
		idx[p.ID] = p
	}

	regMu.Lock()
	currentReg = reg
	profileIdx = idx
	regMu.Unlock()

	return nil
}

func sanitizeProfile(p Profile) Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.Manufacturer = strings.TrimSpace(p.Manufacturer)
	p.Model = strings.TrimSpace(p.Model)
	p.Device = strings.TrimSpace(p.Device)
	p.CPU = strings.TrimSpace(p.CPU)
	p.DPI = strings.TrimSpace(p.DPI)
	p.Resolution = strings.TrimSpace(p.Resolution)
	return p
}

func validateProfile(p Profile) error {
	switch {
	case p.ID == "":
		return errors.New("missing id")
	case p.Manufacturer == "" || p.Model == "":
		return errors.New("missing manufacturer/model")
	case p.AndroidVersion <= 0 || p.AndroidRelease == "":
		return errors.New("missing android version/release")
	case p.DPI == "" || p.Resolution == "":
		return errors.New("missing dpi/resolution")
	}
	return nil
}
