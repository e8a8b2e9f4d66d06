package mpu6050

// Register addresses
const (
	SmplrtDiv   = 0x19
	Config      = 0x1A
	GyroConfig  = 0x1B
	AccelConfig = 0x1C
	FIFOEn      = 0x23
	IntEnable   = 0x38
	IntStatus   = 0x3A
	AccelXOutH  = 0x3B
	AccelYOutH  = 0x3D
	AccelZOutH  = 0x3F
	UserCtrl    = 0x6A
	PwrMgmt1    = 0x6B
	FIFOCountH  = 0x72
	FIFORW      = 0x74
	RegWhoAmI   = 0x75
)

// Flags
const (
	// FIFO_EN
	AccelFIFO byte = (1 << 3)

	// USER_CTRL
	FIFOEnable byte = (1 << 6)
	FIFOReset  byte = (1 << 2)

	// PWR_MGMT_1
	DeviceReset byte = (1 << 7)
	Sleep       byte = (1 << 6)
	ClockPLLX   byte = 0b001
	clockMask   byte = 0b1111_1000
)

// Device constants
const (
	Addr    = 0x68
	AltAddr = 0x69
	WhoAmI  = 0x68
)

// Accelerometer full scale range
const (
	FS2G = (iota << 3)
	FS4G
	FS8G
	FS16G

	fsMask byte = 0b111_00_111
)

// Digital low pass filter bandwidth, in Hz, of the accelerometer. Any value
// other than DLPF260 sets the internal sample rate to 1 kHz.
const (
	DLPF260 = iota
	DLPF184
	DLPF94
	DLPF44
	DLPF21
	DLPF10
	DLPF5

	dlpfMask byte = 0b11_111_000
)

const (
	fifoSize   = 1024
	sampleSize = 6 // X, Y and Z, 16 bits each
	baseRate   = 1000
)
