//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/refboard/refboard/internal/config"
	"github.com/refboard/refboard/internal/document"
	"github.com/refboard/refboard/internal/engine"
	"github.com/refboard/refboard/internal/interact"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(config.DefaultSpatial())

	// Create the engine API object
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadBoard", js.FuncOf(loadBoard))
	api.Set("updateBoard", js.FuncOf(updateBoard))
	api.Set("loadSampleBoard", js.FuncOf(loadSampleBoard))
	api.Set("setParadigm", js.FuncOf(setParadigm))
	api.Set("resize", js.FuncOf(resize))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("pointerLeave", js.FuncOf(pointerLeave))
	api.Set("wheel", js.FuncOf(wheel))
	api.Set("drop", js.FuncOf(drop))
	api.Set("zoomIn", js.FuncOf(zoomIn))
	api.Set("zoomOut", js.FuncOf(zoomOut))
	api.Set("resetView", js.FuncOf(resetView))
	api.Set("toggleGrid", js.FuncOf(toggleGrid))
	api.Set("minimapClick", js.FuncOf(minimapClick))
	api.Set("addReference", js.FuncOf(addReference))
	api.Set("removeReference", js.FuncOf(removeReference))
	api.Set("setManualStrength", js.FuncOf(setManualStrength))
	api.Set("clearManualStrength", js.FuncOf(clearManualStrength))
	api.Set("setSelection", js.FuncOf(setSelection))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getViewport", js.FuncOf(getViewport))
	api.Set("getMinimap", js.FuncOf(getMinimap))
	api.Set("getBoard", js.FuncOf(getBoard))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("drainEffects", js.FuncOf(drainEffects))
	api.Set("getMode", js.FuncOf(getMode))
	api.Set("getParadigm", js.FuncOf(getParadigm))

	// Register on global scope
	js.Global().Set("refboardEngine", api)

	// Signal that WASM is ready
	js.Global().Set("refboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func fail(msg string) any {
	return js.ValueOf(map[string]any{"error": msg})
}

func floats(args []js.Value, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = args[i].Float()
	}
	return out, true
}

// --- Command Handlers ---

func loadBoard(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing board JSON")
	}
	if err := eng.LoadBoard(args[0].String()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func updateBoard(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing board JSON")
	}
	if err := eng.UpdateBoard(args[0].String()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func loadSampleBoard(this js.Value, args []js.Value) any {
	boardID := "board_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		boardID = args[0].String()
	}
	eng.LoadSampleBoard(boardID)
	return ok()
}

func setParadigm(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing paradigm")
	}
	if err := eng.SetParadigm(document.Paradigm(args[0].String())); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func resize(this js.Value, args []js.Value) any {
	if v, ok := floats(args, 2); ok {
		eng.Resize(v[0], v[1])
	}
	return nil
}

// pointerDown(x, y, button, altKey) with button in DOM numbering
// (0 left, 1 middle, 2 right).
func pointerDown(this js.Value, args []js.Value) any {
	v, ok := floats(args, 2)
	if !ok {
		return nil
	}
	button := interact.ButtonLeft
	if len(args) > 2 {
		button = interact.Button(args[2].Int())
	}
	alt := len(args) > 3 && args[3].Truthy()
	eng.PointerDown(v[0], v[1], button, alt)
	return nil
}

func pointerMove(this js.Value, args []js.Value) any {
	if v, ok := floats(args, 2); ok {
		eng.PointerMove(v[0], v[1])
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) any {
	if v, ok := floats(args, 2); ok {
		eng.PointerUp(v[0], v[1])
	}
	return nil
}

func pointerLeave(this js.Value, args []js.Value) any {
	eng.PointerLeave()
	return nil
}

func wheel(this js.Value, args []js.Value) any {
	if v, ok := floats(args, 3); ok {
		eng.Wheel(v[0], v[1], v[2])
	}
	return nil
}

func drop(this js.Value, args []js.Value) any {
	v, ok := floats(args, 2)
	if !ok || len(args) < 3 {
		return nil
	}
	eng.Drop(v[0], v[1], args[2].String())
	return nil
}

func zoomIn(this js.Value, args []js.Value) any {
	eng.ZoomIn()
	return nil
}

func zoomOut(this js.Value, args []js.Value) any {
	eng.ZoomOut()
	return nil
}

func resetView(this js.Value, args []js.Value) any {
	eng.ResetView()
	return nil
}

func toggleGrid(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.ToggleGrid())
}

func minimapClick(this js.Value, args []js.Value) any {
	if v, ok := floats(args, 2); ok {
		eng.MinimapClick(v[0], v[1])
	}
	return nil
}

func addReference(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing reference JSON")
	}
	var ref document.Reference
	if err := json.Unmarshal([]byte(args[0].String()), &ref); err != nil {
		return fail(err.Error())
	}
	if err := eng.AddReference(ref); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func removeReference(this js.Value, args []js.Value) any {
	if len(args) > 0 {
		eng.RemoveReference(args[0].String())
	}
	return nil
}

func setManualStrength(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return fail("missing id or strength")
	}
	if err := eng.SetManualStrength(args[0].String(), args[1].Int()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func clearManualStrength(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing id")
	}
	if err := eng.ClearManualStrength(args[0].String()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) any {
	v, ok := floats(args, 2)
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(v[0], v[1]))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getViewport(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetViewport())
}

func getMinimap(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetMinimap())
}

func getBoard(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetBoard())
}

func getSelection(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelection())
}

func drainEffects(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.DrainEffectsJSON())
}

func getMode(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Mode().String())
}

func getParadigm(this js.Value, args []js.Value) any {
	return js.ValueOf(string(eng.Paradigm()))
}
