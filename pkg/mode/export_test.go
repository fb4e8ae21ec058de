package mode

// NewRegistryWithSalt builds a registry whose salt is read from the given reader.
var NewRegistryWithSalt = newRegistry
