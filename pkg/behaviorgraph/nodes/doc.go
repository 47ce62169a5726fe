// Package nodes provides the standard node kinds: dialog lines, delays,
// signal waits, variable writes and the camera, audio and scene effects.
//
// Each kind reads its settings from the node's Params and calls the
// collaborators in Context.Services, so the same graph runs against a
// game client, a headless server or a test recorder.
//
//	g := behaviorgraph.NewGraph("ambush").
//	    AddNode(behaviorgraph.NewNode("start", behaviorgraph.StartKind)).
//	    AddNode(nodes.Text("warn", "Behind you, ${player.name}!", nodes.AutoAdvance())).
//	    AddNode(nodes.CameraShake("shake", 500*time.Millisecond, 0, 0.8)).
//	    AddNode(nodes.Delay("beat", 2*time.Second)).
//	    ...
//
// Catalog indexes every kind by name for tools that build graphs from
// authored data.
package nodes
