package stores

import (
	"collab-server/config"
	"collab-server/core"
	"collab-server/stores/filesystem"
	"collab-server/stores/memory"
	"collab-server/stores/sqlite"

	"github.com/sirupsen/logrus"
)

func GetStore(cfg *config.Config) core.DocumentStore {
	var store core.DocumentStore

	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	switch cfg.StorageType {
	case "filesystem":
		storageField["basePath"] = cfg.LocalStoragePath
		store = filesystem.NewDocumentStore(cfg.LocalStoragePath)
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		store = sqlite.NewDocumentStore(cfg.DataSourceName)
	default:
		store = memory.NewDocumentStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}
