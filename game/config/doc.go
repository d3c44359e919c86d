// Package config manages named starting positions for Fox and Geese.
//
// A starting position is a JSON file in the configs directory holding a name,
// a description and an engine snapshot:
//
//	{
//	  "name": "Endgame",
//	  "description": "Nine geese already kicked",
//	  "position": {
//	    "board": ["   ---   ", ...],
//	    "current_player": "F",
//	    "kicked_count": 9,
//	    "history": []
//	  }
//	}
//
// The file name without .json is the identifier clients pass when creating a
// session. Every position is validated by rebuilding an engine from it.
//
// The standard opening is built in and is the default; a standard.json file
// replaces it.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	endgame, err := manager.LoadConfig("endgame")
//	configs, err := manager.ListConfigs()
package config
