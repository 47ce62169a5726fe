/*
Package config provides node parameters and host settings.

# Node Parameters

Every node carries a Config holding the authored parameters for its kind:
the line of dialog, the sound to play, the shake intensity. Accessors take
a default, so a kind never has to check for missing keys:

	params := config.New(map[string]any{
	    "text":  "Halt! Who goes there?",
	    "delay": 1.5,
	})

	text := params.String("text", "")
	delay := params.Duration("delay", 0) // 1.5s

Duration accepts strings ("250ms"), bare numbers as seconds, and
time.Duration values. Int accepts floats only when they are whole.

A Config copies its input and is never modified afterwards, so compiled
graphs can share node params across engines. With and Merge return copies.

# Settings

Settings configure a host process: tick interval, step limit, metrics
backend and variable store. They load from YAML or JSON:

	tick_interval: 16ms
	max_steps: 1000
	metrics: prometheus
	vars_driver: sqlite
	vars_dsn: ./save.db

A Watcher reloads settings when the file changes:

	w, err := config.NewWatcher("host.yaml", logger)
	w.OnChange(func(s config.Settings) { h.SetTickInterval(s.TickInterval) })
	stop, err := w.Watch()
	defer stop()
*/
package config
