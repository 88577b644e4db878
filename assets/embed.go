// Package assets provides the bundled dictionary snapshot shipped with the engine.
package assets

import _ "embed"

// BundledDictionary is the dictionary document used when neither the remote
// source nor the local cache is usable.
//
//go:embed tuss_exames_comuns.json
var BundledDictionary []byte
