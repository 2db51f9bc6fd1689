// Package cgen renders a generated module as C source: a header with
// opcode defines and procedure prototypes, and an implementation file
// with the procedure bodies.
//
// Every statement of the procedure IR maps to one C construct. Stream
// operations become method calls on the stream parameter, presence
// mismatches print to stderr and untransmitted members leave a comment
// placeholder:
//
//	void marshal_Line(VulkanStream* stream, const Line* forMarshaling)
//	{
//	    stream->write((const void*)&forMarshaling->count, sizeof(uint32_t));
//	    stream->write((const void*)&forMarshaling->pts, sizeof(Point*));
//	    if (forMarshaling->pts)
//	    {
//	        for (uint32_t i = 0; i < (uint32_t)forMarshaling->count; ++i)
//	        {
//	            marshal_Point(stream, (const Point*)(forMarshaling->pts + i));
//	        }
//	    }
//	}
package cgen
