package nersdk

import (
	"github.com/wagiedev/ner-sdk-go/internal/config"
	"github.com/wagiedev/ner-sdk-go/internal/tagged"
)

// Options configures the behavior of the tagger client.
type Options = config.Options

// EntityMap is an ordered mapping from entity category (e.g. "PERSON",
// "ORGANIZATION") to the mentions found for it in one sentence.
type EntityMap = tagged.EntityMap

// Result holds one EntityMap per sentence the worker split the input text
// into, in the order the worker emitted them.
type Result []*EntityMap
