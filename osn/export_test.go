package osn

// SetMaxSettingsSize lowers the settings size limit for tests.
func (s *Server) SetMaxSettingsSize(n int) { s.maxSettings = n }
