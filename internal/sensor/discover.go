// internal/sensor/discover.go
package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Port is one enumerated serial device.
// Manufacturer is empty when the OS exposes no descriptor.
type Port struct {
	Path         string
	Manufacturer string
}

// Enumerator lists the serial devices present on the host.
type Enumerator interface {
	Ports() ([]Port, error)
}

// Discover returns the path of the first port whose manufacturer
// descriptor contains manufacturer (case-sensitive).
// Ports without a descriptor are skipped.
func Discover(enum Enumerator, manufacturer string) (string, error) {
	ports, err := enum.Ports()
	if err != nil {
		return "", fmt.Errorf("sensor: enumerate ports: %w", err)
	}

	for _, p := range ports {
		if p.Manufacturer == "" {
			continue
		}
		if strings.Contains(p.Manufacturer, manufacturer) {
			return p.Path, nil
		}
	}

	return "", ErrNoDevice
}

// SystemEnumerator lists ports via the OS and resolves the USB manufacturer
// string from sysfs where available.
type SystemEnumerator struct {
	// SysfsRoot defaults to /sys/class/tty.
	SysfsRoot string
}

func (e SystemEnumerator) Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	out := make([]Port, 0, len(details))
	for _, d := range details {
		p := Port{Path: d.Name}
		if d.IsUSB {
			p.Manufacturer = e.usbManufacturer(d.Name)
			if p.Manufacturer == "" {
				p.Manufacturer = d.Product
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// usbManufacturer walks up from the tty's device node to the USB device
// that carries the "manufacturer" attribute.
// ttyUSB nodes sit two levels below it, ttyACM nodes one.
func (e SystemEnumerator) usbManufacturer(devPath string) string {
	root := e.SysfsRoot
	if root == "" {
		root = "/sys/class/tty"
	}

	dev, err := filepath.EvalSymlinks(filepath.Join(root, filepath.Base(devPath), "device"))
	if err != nil {
		return ""
	}

	dir := dev
	for i := 0; i < 3; i++ {
		b, err := os.ReadFile(filepath.Join(dir, "manufacturer"))
		if err == nil {
			return strings.TrimSpace(string(b))
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
