package notify

import "fmt"

// LowBatteryAlert renders the subject and body of a low-battery email
func LowBatteryAlert(deviceName string, percent int) (string, string) {
	subject := fmt.Sprintf("%s - low battery!", deviceName)
	body := fmt.Sprintf("The battery of %s is low (%d %%)!\n"+
		"The cats will be locked out or in once it runs flat.\n"+
		"Please replace the batteries soon.\n", deviceName, percent)
	return subject, body
}
