//go:build darwin

package platform

func newIdleProvider() IdleProvider {
	return unsupportedIdleProvider{}
}
