// internal/writer/dbus/service.go
package dbus

import (
	"errors"
	"fmt"
	"os"

	godbus "github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/tamzrod/depth-bridge/internal/writer"
)

const (
	busItemIface = "com.victronenergy.BusItem"

	sigPropertiesChanged = busItemIface + ".PropertiesChanged"
	sigItemsChanged      = busItemIface + ".ItemsChanged"
)

// SetValue result codes.
const (
	setOK          int32 = 0
	setNotAllowed  int32 = 1
	setRejected    int32 = 2
	setUnknownPath int32 = 3
)

// emitter is the part of *godbus.Conn used to signal changes.
type emitter interface {
	Emit(path godbus.ObjectPath, name string, values ...interface{}) error
}

// Service publishes items as BusItem objects under a well-known name.
// It implements writer.Sink.
type Service struct {
	name string
	conn *godbus.Conn
	emit emitter
	log  *zap.Logger

	store    *store
	onChange writer.ChangeFunc
}

// Connect opens the session bus when DBUS_SESSION_BUS_ADDRESS is set,
// the system bus otherwise. The name is claimed in Register.
func Connect(name string, log *zap.Logger) (*Service, error) {
	if name == "" {
		return nil, errors.New("dbus: service name required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		conn *godbus.Conn
		err  error
	)
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		conn, err = godbus.ConnectSessionBus()
	} else {
		conn, err = godbus.ConnectSystemBus()
	}
	if err != nil {
		return nil, fmt.Errorf("dbus: connect: %w", err)
	}

	return &Service{
		name: name,
		conn: conn,
		emit: conn,
		log:  log.With(zap.String("component", "dbus"), zap.String("service", name)),
	}, nil
}

// Register exports every item, then claims the service name so consumers
// never see a partially populated service.
func (s *Service) Register(items []writer.Item, onChange writer.ChangeFunc) error {
	if s.store != nil {
		return errors.New("dbus: already registered")
	}
	s.store = newStore(items)
	s.onChange = onChange

	if s.conn == nil {
		return nil
	}

	for _, p := range s.store.paths() {
		obj := &busItem{svc: s, path: p}
		if err := s.conn.Export(obj, godbus.ObjectPath(p), busItemIface); err != nil {
			return fmt.Errorf("dbus: export %s: %w", p, err)
		}
	}
	if err := s.conn.Export(&rootItem{svc: s}, "/", busItemIface); err != nil {
		return fmt.Errorf("dbus: export root: %w", err)
	}

	reply, err := s.conn.RequestName(s.name, godbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("dbus: request name %s: %w", s.name, err)
	}
	if reply != godbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("dbus: name %s already taken", s.name)
	}

	s.log.Info("service registered", zap.Int("items", len(items)))
	return nil
}

// Set stores a value and signals consumers when it changed.
func (s *Service) Set(path string, value any) error {
	if s.store == nil {
		return errors.New("dbus: not registered")
	}

	changed, err := s.store.set(path, value)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.signal(path)
}

func (s *Service) Close() error {
	if s.conn == nil {
		return nil
	}
	if s.store != nil {
		if _, err := s.conn.ReleaseName(s.name); err != nil {
			s.log.Warn("release name failed", zap.Error(err))
		}
	}
	return s.conn.Close()
}

func (s *Service) signal(path string) error {
	if s.emit == nil {
		return nil
	}

	v, text, _ := s.store.get(path)
	props := map[string]godbus.Variant{
		"Value": v,
		"Text":  godbus.MakeVariant(text),
	}

	if err := s.emit.Emit(godbus.ObjectPath(path), sigPropertiesChanged, props); err != nil {
		return fmt.Errorf("dbus: emit %s: %w", path, err)
	}
	items := map[string]map[string]godbus.Variant{path: props}
	if err := s.emit.Emit("/", sigItemsChanged, items); err != nil {
		return fmt.Errorf("dbus: emit items changed: %w", err)
	}
	return nil
}

// ---- exported bus objects ----

// busItem serves one path.
type busItem struct {
	svc  *Service
	path string
}

func (b *busItem) GetValue() (godbus.Variant, *godbus.Error) {
	v, _, ok := b.svc.store.get(b.path)
	if !ok {
		return godbus.Variant{}, godbus.MakeFailedError(fmt.Errorf("unknown path %s", b.path))
	}
	return v, nil
}

func (b *busItem) GetText() (string, *godbus.Error) {
	_, text, ok := b.svc.store.get(b.path)
	if !ok {
		return "", godbus.MakeFailedError(fmt.Errorf("unknown path %s", b.path))
	}
	return text, nil
}

// SetValue applies a consumer write. The change callback may reject it.
func (b *busItem) SetValue(v godbus.Variant) (int32, *godbus.Error) {
	if !b.svc.store.writeable(b.path) {
		return setNotAllowed, nil
	}

	value := v.Value()
	if b.svc.onChange != nil && !b.svc.onChange(b.path, value) {
		return setRejected, nil
	}

	changed, err := b.svc.store.set(b.path, value)
	if err != nil {
		return setUnknownPath, nil
	}
	if changed {
		if err := b.svc.signal(b.path); err != nil {
			b.svc.log.Warn("change signal failed", zap.String("path", b.path), zap.Error(err))
		}
	}
	return setOK, nil
}

// rootItem serves "/" with the whole subtree.
type rootItem struct {
	svc *Service
}

func (r *rootItem) GetValue() (map[string]godbus.Variant, *godbus.Error) {
	vals, _ := r.svc.store.values()
	return vals, nil
}

func (r *rootItem) GetText() (map[string]string, *godbus.Error) {
	_, texts := r.svc.store.values()
	return texts, nil
}

func (r *rootItem) GetItems() (map[string]map[string]godbus.Variant, *godbus.Error) {
	vals, texts := r.svc.store.values()
	out := make(map[string]map[string]godbus.Variant, len(vals))
	for k, v := range vals {
		out["/"+k] = map[string]godbus.Variant{
			"Value": v,
			"Text":  godbus.MakeVariant(texts[k]),
		}
	}
	return out, nil
}
