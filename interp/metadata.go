package interp

import (
	"strings"

	"github.com/binarytmpl/bti/ast"
	"github.com/binarytmpl/bti/interp/fields"
)

// maxWatchDepth guards against a watch/update cycle recursing forever
// (§4.G "MetadataCycle").
const maxWatchDepth = 32

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyMetadata reads a Decl's `<watch=..., update=...>` / `<packer=...,
// packtype=...>` annotations (§4.G) and installs the corresponding hooks
// on the freshly-parsed field f.
func (ip *Interpreter) applyMetadata(d *ast.Decl, f fields.Field) error {
	kv := d.Metadata.Keyvals
	watchNames, hasWatch := kv["watch"]
	updateName, hasUpdate := kv["update"]
	packerName, hasPacker := kv["packer"]
	packName, hasPack := kv["pack"]
	unpackName, hasUnpack := kv["unpack"]
	packTypeName, hasPackType := kv["packtype"]

	meta := &fields.Metadata{}

	if hasWatch || hasUpdate {
		if !hasWatch || !hasUpdate {
			return metaErr(d.Pos(), "watch/update metadata on %q requires both keys", d.Name)
		}
		names := splitCSV(watchNames)
		wm := &fields.WatchMeta{WatchNames: names, UpdateName: updateName}
		wm.OnChange = func() error { return ip.runWatchUpdate(wm, f, d.Pos()) }
		meta.Watch = wm
		for _, wn := range names {
			ip.watchers[wn] = append(ip.watchers[wn], f)
		}
	}

	if hasPacker || (hasPack && hasUnpack) {
		if !hasPackType {
			return metaErr(d.Pos(), "pack/unpack metadata on %q requires packtype", d.Name)
		}
		pm := &fields.PackMeta{PackTypeName: packTypeName, PackerName: packerName, PackName: packName, UnpackName: unpackName}
		pm.OnParse = func(raw []byte) (fields.Field, error) { return ip.runUnpack(pm, raw, d.Pos()) }
		pm.OnWrite = func(view fields.Field) ([]byte, error) { return ip.runPack(pm, view, d.Pos()) }
		meta.Pack = pm

		unpacked, err := pm.OnParse(fieldRawBytes(f))
		if err != nil {
			return err
		}
		pm.Unpacked = unpacked
	}

	f.SetMetadata(meta)
	return nil
}

// fireWatchers recomputes every field watching the just-changed name name
// (§4.G "synchronous depth-first triggers").
func (ip *Interpreter) fireWatchers(name string) error {
	for _, f := range ip.watchers[name] {
		m := f.Metadata()
		if m != nil && m.Watch != nil {
			if err := m.Watch.OnChange(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ip *Interpreter) runWatchUpdate(wm *fields.WatchMeta, target fields.Field, pos ast.Coord) error {
	ip.watchDepth++
	defer func() { ip.watchDepth-- }()
	if ip.watchDepth > maxWatchDepth {
		return metaErr(pos, "MetadataCycle: watch/update recursion exceeded %d levels", maxWatchDepth)
	}

	args := make([]fields.Field, 0, len(wm.WatchNames))
	for _, wn := range wm.WatchNames {
		f, ok := ip.scope.GetID(wn)
		if !ok {
			return metaErr(pos, "watch dependency %q not found", wn)
		}
		args = append(args, f)
	}

	result, err := ip.invokeCallable(wm.UpdateName, args, pos)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return target.SetValue(result.Value())
}

// invokeCallable looks up name as a user function first, then a native,
// matching the lookup order FuncCall uses.
func (ip *Interpreter) invokeCallable(name string, args []fields.Field, pos ast.Coord) (fields.Field, error) {
	if fn, ok := ip.scope.GetFunc(name); ok {
		return ip.callFunction(fn, args, pos)
	}
	if nat, ok := ip.natives.get(name); ok {
		return ip.callNative(nat, args, pos)
	}
	return nil, metaErr(pos, "function %q not found", name)
}

func (ip *Interpreter) runUnpack(pm *fields.PackMeta, raw []byte, pos ast.Coord) (fields.Field, error) {
	name := pm.UnpackName
	if name == "" {
		name = pm.PackerName
	}
	return ip.invokeCallable(name, []fields.Field{rawBytesField(raw)}, pos)
}

func (ip *Interpreter) runPack(pm *fields.PackMeta, view fields.Field, pos ast.Coord) ([]byte, error) {
	name := pm.PackName
	if name == "" {
		name = pm.PackerName
	}
	result, err := ip.invokeCallable(name, []fields.Field{view}, pos)
	if err != nil {
		return nil, err
	}
	return fieldRawBytes(result), nil
}

func rawBytesField(raw []byte) fields.Field {
	f := fields.NewString()
	f.SetValue(string(raw))
	return f
}

// fieldRawBytes best-effort serializes a field's current value back to
// bytes, little-endian, for feeding to a pack function.
func fieldRawBytes(f fields.Field) []byte {
	if f == nil {
		return nil
	}
	switch v := f.Value().(type) {
	case int64:
		return encodeLE(uint64(v), bytesFor(f))
	case uint64:
		return encodeLE(v, bytesFor(f))
	case string:
		return []byte(v)
	}
	return nil
}

func bytesFor(f fields.Field) int {
	n := int(f.WidthBits() / 8)
	if n <= 0 {
		n = 8
	}
	return n
}

func encodeLE(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
