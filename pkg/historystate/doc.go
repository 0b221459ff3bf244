// Package historystate tracks client-side navigation history so per-page
// state (scroll position, form data, fetched data) survives back/forward
// navigation and, optionally, full page reloads.
//
// It keeps a navigation stack of (route descriptor, data snapshot) pairs in
// step with the host's native history and labels every transition as new,
// reload, push, back or forward.
//
// # Basic Usage
//
//	hs, err := historystate.New(ctx, historystate.DefaultConfig(),
//	    historystate.WithNativeHistory(native),
//	    historystate.WithStorage(sessionStorage),
//	)
//	if err != nil {
//	    return err
//	}
//	defer hs.Close()
//
//	// Compose the push middleware and the pre-navigation guard into the router.
//	hs.Install(router)
//
//	// When a view mounts, hand it over so its BackupData is snapshotted
//	// when the page is left.
//	hs.Mount(view)
//
// # Reloadable Mode
//
// With [Config.Reloadable] set, the page index travels in the URL query
// (see [Config.QueryKey]) and the whole stack is written to session storage
// when the page unloads. The next load restores it and reports [ActionReload].
// Reloadable mode needs a [Storage] and an [UnloadNotifier].
//
// # Reading the State
//
// Application code receives a read-only [Reader] through [NewContext] and
// [FromContext]:
//
//	r, ok := historystate.FromContext(ctx)
//	if ok && r.Action() == historystate.ActionBack {
//	    restore(r.Data())
//	}
//
// # Version
//
// Current version: 1.0.0
package historystate
