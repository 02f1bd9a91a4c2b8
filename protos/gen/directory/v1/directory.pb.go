// Code generated by protoc-gen-go. DO NOT EDIT.
// versions:
// 	protoc-gen-go v1.36.10
// 	protoc        (unknown)
// source: directory/v1/directory.proto

package directoryv1

import (
	protoreflect "google.golang.org/protobuf/reflect/protoreflect"
	protoimpl "google.golang.org/protobuf/runtime/protoimpl"
	reflect "reflect"
	sync "sync"
	unsafe "unsafe"
)

const (
	// Verify that this generated code is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(20 - protoimpl.MinVersion)
	// Verify that runtime/protoimpl is sufficiently up-to-date.
	_ = protoimpl.EnforceVersion(protoimpl.MaxVersion - 20)
)

type GetServiceRequest struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	ServiceId     string                 `protobuf:"bytes,1,opt,name=service_id,json=serviceId,proto3" json:"service_id,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *GetServiceRequest) Reset() {
	*x = GetServiceRequest{}
	mi := &file_directory_v1_directory_proto_msgTypes[0]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *GetServiceRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*GetServiceRequest) ProtoMessage() {}

func (x *GetServiceRequest) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[0]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use GetServiceRequest.ProtoReflect.Descriptor instead.
func (*GetServiceRequest) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{0}
}

func (x *GetServiceRequest) GetServiceId() string {
	if x != nil {
		return x.ServiceId
	}
	return ""
}

type GetServiceResponse struct {
	state           protoimpl.MessageState `protogen:"open.v1"`
	Found           bool                   `protobuf:"varint,1,opt,name=found,proto3" json:"found,omitempty"`
	ServiceId       string                 `protobuf:"bytes,2,opt,name=service_id,json=serviceId,proto3" json:"service_id,omitempty"`
	CompanyId       string                 `protobuf:"bytes,3,opt,name=company_id,json=companyId,proto3" json:"company_id,omitempty"`
	Name            string                 `protobuf:"bytes,4,opt,name=name,proto3" json:"name,omitempty"`
	DurationMinutes int32                  `protobuf:"varint,5,opt,name=duration_minutes,json=durationMinutes,proto3" json:"duration_minutes,omitempty"`
	Price           string                 `protobuf:"bytes,6,opt,name=price,proto3" json:"price,omitempty"`
	Available       bool                   `protobuf:"varint,7,opt,name=available,proto3" json:"available,omitempty"`
	unknownFields   protoimpl.UnknownFields
	sizeCache       protoimpl.SizeCache
}

func (x *GetServiceResponse) Reset() {
	*x = GetServiceResponse{}
	mi := &file_directory_v1_directory_proto_msgTypes[1]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *GetServiceResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*GetServiceResponse) ProtoMessage() {}

func (x *GetServiceResponse) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[1]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use GetServiceResponse.ProtoReflect.Descriptor instead.
func (*GetServiceResponse) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{1}
}

func (x *GetServiceResponse) GetFound() bool {
	if x != nil {
		return x.Found
	}
	return false
}

func (x *GetServiceResponse) GetServiceId() string {
	if x != nil {
		return x.ServiceId
	}
	return ""
}

func (x *GetServiceResponse) GetCompanyId() string {
	if x != nil {
		return x.CompanyId
	}
	return ""
}

func (x *GetServiceResponse) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *GetServiceResponse) GetDurationMinutes() int32 {
	if x != nil {
		return x.DurationMinutes
	}
	return 0
}

func (x *GetServiceResponse) GetPrice() string {
	if x != nil {
		return x.Price
	}
	return ""
}

func (x *GetServiceResponse) GetAvailable() bool {
	if x != nil {
		return x.Available
	}
	return false
}

type GetAvailabilityWindowRequest struct {
	state      protoimpl.MessageState `protogen:"open.v1"`
	LocationId string                 `protobuf:"bytes,1,opt,name=location_id,json=locationId,proto3" json:"location_id,omitempty"`
	StaffId    string                 `protobuf:"bytes,2,opt,name=staff_id,json=staffId,proto3" json:"staff_id,omitempty"`
	// 0=Sunday .. 6=Saturday, in the booking reference zone.
	Weekday       int32 `protobuf:"varint,3,opt,name=weekday,proto3" json:"weekday,omitempty"`
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *GetAvailabilityWindowRequest) Reset() {
	*x = GetAvailabilityWindowRequest{}
	mi := &file_directory_v1_directory_proto_msgTypes[2]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *GetAvailabilityWindowRequest) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*GetAvailabilityWindowRequest) ProtoMessage() {}

func (x *GetAvailabilityWindowRequest) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[2]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use GetAvailabilityWindowRequest.ProtoReflect.Descriptor instead.
func (*GetAvailabilityWindowRequest) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{2}
}

func (x *GetAvailabilityWindowRequest) GetLocationId() string {
	if x != nil {
		return x.LocationId
	}
	return ""
}

func (x *GetAvailabilityWindowRequest) GetStaffId() string {
	if x != nil {
		return x.StaffId
	}
	return ""
}

func (x *GetAvailabilityWindowRequest) GetWeekday() int32 {
	if x != nil {
		return x.Weekday
	}
	return 0
}

type GetAvailabilityWindowResponse struct {
	state         protoimpl.MessageState `protogen:"open.v1"`
	Found         bool                   `protobuf:"varint,1,opt,name=found,proto3" json:"found,omitempty"`
	StartTime     string                 `protobuf:"bytes,2,opt,name=start_time,json=startTime,proto3" json:"start_time,omitempty"` // "HH:MM"
	EndTime       string                 `protobuf:"bytes,3,opt,name=end_time,json=endTime,proto3" json:"end_time,omitempty"`       // "HH:MM"
	unknownFields protoimpl.UnknownFields
	sizeCache     protoimpl.SizeCache
}

func (x *GetAvailabilityWindowResponse) Reset() {
	*x = GetAvailabilityWindowResponse{}
	mi := &file_directory_v1_directory_proto_msgTypes[3]
	ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
	ms.StoreMessageInfo(mi)
}

func (x *GetAvailabilityWindowResponse) String() string {
	return protoimpl.X.MessageStringOf(x)
}

func (*GetAvailabilityWindowResponse) ProtoMessage() {}

func (x *GetAvailabilityWindowResponse) ProtoReflect() protoreflect.Message {
	mi := &file_directory_v1_directory_proto_msgTypes[3]
	if x != nil {
		ms := protoimpl.X.MessageStateOf(protoimpl.Pointer(x))
		if ms.LoadMessageInfo() == nil {
			ms.StoreMessageInfo(mi)
		}
		return ms
	}
	return mi.MessageOf(x)
}

// Deprecated: Use GetAvailabilityWindowResponse.ProtoReflect.Descriptor instead.
func (*GetAvailabilityWindowResponse) Descriptor() ([]byte, []int) {
	return file_directory_v1_directory_proto_rawDescGZIP(), []int{3}
}

func (x *GetAvailabilityWindowResponse) GetFound() bool {
	if x != nil {
		return x.Found
	}
	return false
}

func (x *GetAvailabilityWindowResponse) GetStartTime() string {
	if x != nil {
		return x.StartTime
	}
	return ""
}

func (x *GetAvailabilityWindowResponse) GetEndTime() string {
	if x != nil {
		return x.EndTime
	}
	return ""
}

var File_directory_v1_directory_proto protoreflect.FileDescriptor

const file_directory_v1_directory_proto_rawDesc = "" +
	"\n" +
	"\x1cdirectory/v1/directory.proto\x12\fdirectory.v1\"2\n" +
	"\x11GetServiceRequest\x12\x1d\n" +
	"\n" +
	"service_id\x18\x01 \x01(\tR\tserviceId\"\xdb\x01\n" +
	"\x12GetServiceResponse\x12\x14\n" +
	"\x05found\x18\x01 \x01(\bR\x05found\x12\x1d\n" +
	"\n" +
	"service_id\x18\x02 \x01(\tR\tserviceId\x12\x1d\n" +
	"\n" +
	"company_id\x18\x03 \x01(\tR\tcompanyId\x12\x12\n" +
	"\x04name\x18\x04 \x01(\tR\x04name\x12)\n" +
	"\x10duration_minutes\x18\x05 \x01(\x05R\x0fdurationMinutes\x12\x14\n" +
	"\x05price\x18\x06 \x01(\tR\x05price\x12\x1c\n" +
	"\tavailable\x18\a \x01(\bR\tavailable\"t\n" +
	"\x1cGetAvailabilityWindowRequest\x12\x1f\n" +
	"\vlocation_id\x18\x01 \x01(\tR\n" +
	"locationId\x12\x19\n" +
	"\bstaff_id\x18\x02 \x01(\tR\astaffId\x12\x18\n" +
	"\aweekday\x18\x03 \x01(\x05R\aweekday\"o\n" +
	"\x1dGetAvailabilityWindowResponse\x12\x14\n" +
	"\x05found\x18\x01 \x01(\bR\x05found\x12\x1d\n" +
	"\n" +
	"start_time\x18\x02 \x01(\tR\tstartTime\x12\x19\n" +
	"\bend_time\x18\x03 \x01(\tR\aendTime2\xd5\x01\n" +
	"\x10DirectoryService\x12O\n" +
	"\n" +
	"GetService\x12\x1f.directory.v1.GetServiceRequest\x1a .directory.v1.GetServiceResponse\x12p\n" +
	"\x15GetAvailabilityWindow\x12*.directory.v1.GetAvailabilityWindowRequest\x1a+.directory.v1.GetAvailabilityWindowResponseBCZAgithub.com/jp-osorio/citabook/protos/gen/directory/v1;directoryv1b\x06proto3"

var (
	file_directory_v1_directory_proto_rawDescOnce sync.Once
	file_directory_v1_directory_proto_rawDescData []byte
)

func file_directory_v1_directory_proto_rawDescGZIP() []byte {
	file_directory_v1_directory_proto_rawDescOnce.Do(func() {
		file_directory_v1_directory_proto_rawDescData = protoimpl.X.CompressGZIP(unsafe.Slice(unsafe.StringData(file_directory_v1_directory_proto_rawDesc), len(file_directory_v1_directory_proto_rawDesc)))
	})
	return file_directory_v1_directory_proto_rawDescData
}

var file_directory_v1_directory_proto_msgTypes = make([]protoimpl.MessageInfo, 4)
var file_directory_v1_directory_proto_goTypes = []any{
	(*GetServiceRequest)(nil),             // 0: directory.v1.GetServiceRequest
	(*GetServiceResponse)(nil),            // 1: directory.v1.GetServiceResponse
	(*GetAvailabilityWindowRequest)(nil),  // 2: directory.v1.GetAvailabilityWindowRequest
	(*GetAvailabilityWindowResponse)(nil), // 3: directory.v1.GetAvailabilityWindowResponse
}
var file_directory_v1_directory_proto_depIdxs = []int32{
	0, // 0: directory.v1.DirectoryService.GetService:input_type -> directory.v1.GetServiceRequest
	2, // 1: directory.v1.DirectoryService.GetAvailabilityWindow:input_type -> directory.v1.GetAvailabilityWindowRequest
	1, // 2: directory.v1.DirectoryService.GetService:output_type -> directory.v1.GetServiceResponse
	3, // 3: directory.v1.DirectoryService.GetAvailabilityWindow:output_type -> directory.v1.GetAvailabilityWindowResponse
	2, // [2:4] is the sub-list for method output_type
	0, // [0:2] is the sub-list for method input_type
	0, // [0:0] is the sub-list for extension type_name
	0, // [0:0] is the sub-list for extension extendee
	0, // [0:0] is the sub-list for field type_name
}

func init() { file_directory_v1_directory_proto_init() }
func file_directory_v1_directory_proto_init() {
	if File_directory_v1_directory_proto != nil {
		return
	}
	type x struct{}
	out := protoimpl.TypeBuilder{
		File: protoimpl.DescBuilder{
			GoPackagePath: reflect.TypeOf(x{}).PkgPath(),
			RawDescriptor: unsafe.Slice(unsafe.StringData(file_directory_v1_directory_proto_rawDesc), len(file_directory_v1_directory_proto_rawDesc)),
			NumEnums:      0,
			NumMessages:   4,
			NumExtensions: 0,
			NumServices:   1,
		},
		GoTypes:           file_directory_v1_directory_proto_goTypes,
		DependencyIndexes: file_directory_v1_directory_proto_depIdxs,
		MessageInfos:      file_directory_v1_directory_proto_msgTypes,
	}.Build()
	File_directory_v1_directory_proto = out.File
	file_directory_v1_directory_proto_goTypes = nil
	file_directory_v1_directory_proto_depIdxs = nil
}
