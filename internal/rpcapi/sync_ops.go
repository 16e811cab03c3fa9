package rpcapi

import "github.com/wgergely/repository-manager/internal/syncengine"

func (s *service) Check(opts syncengine.Options) (syncengine.CheckReport, error) {
	return s.engine.Check(opts)
}

func (s *service) Sync(opts syncengine.Options) (syncengine.SyncReport, error) {
	return s.engine.Sync(opts)
}

func (s *service) Fix(opts syncengine.Options) (syncengine.SyncReport, error) {
	return s.engine.Fix(opts)
}
