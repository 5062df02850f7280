package storage

var RootLevel = rootLevel
