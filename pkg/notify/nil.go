package notify

import "reflect"

// isNilSender catches typed nil pointers wrapped in the Sender interface.
func isNilSender(s Sender) bool {
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
